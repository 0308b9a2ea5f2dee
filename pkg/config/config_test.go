package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/runner"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    *Config
		wantErr string
	}{
		{
			name: "full config",
			data: `
root: fixtures
patterns:
  - "css/**"
  - "markup/*.test"
skipDirs: [drafts]
workers: 4
timeout: 90s
mode: update
`,
			want: &Config{
				Root:     "fixtures",
				Patterns: []string{"css/**", "markup/*.test"},
				SkipDirs: []string{"drafts"},
				Workers:  4,
				Timeout:  90 * time.Second,
				Mode:     "update",
			},
		},
		{
			name: "empty document",
			data: "",
			want: &Config{},
		},
		{
			name:    "unknown key",
			data:    "rooot: x\n",
			wantErr: "field rooot not found",
		},
		{
			name:    "negative workers",
			data:    "workers: -1\n",
			wantErr: "workers must not be negative",
		},
		{
			name:    "unknown mode",
			data:    "mode: replace\n",
			wantErr: "unknown mode",
		},
		{
			name:    "bad pattern",
			data:    "patterns: ['css/[']\n",
			wantErr: "invalid pattern",
		},
		{
			name:    "bad timeout",
			data:    "timeout: soon\n",
			wantErr: "unmarshal config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(tt.data))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("should resolve relative root against the config directory", func(t *testing.T) {
		t.Parallel()

		// Given
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("root: testdata\nmode: insert\n"), 0o644))

		// When
		cfg, err := Load(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "testdata"), cfg.Root)
		assert.Equal(t, domain.ModeInsert, cfg.RunMode())
	})

	t.Run("should keep absolute root", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(t.TempDir(), "fixtures")
		path := filepath.Join(dir, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("root: "+root+"\n"), 0o644))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, root, cfg.Root)
	})

	t.Run("should fail for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Patterns: []string{"css/**"},
		SkipDirs: []string{"drafts"},
		Workers:  3,
		Timeout:  time.Minute,
		Mode:     "accept",
	}

	var opts runner.Options
	for _, opt := range cfg.Options() {
		opt(&opts)
	}

	assert.Equal(t, runner.Options{
		Mode:     domain.ModeInsert,
		Patterns: []string{"css/**"},
		SkipDirs: []string{"drafts"},
		Timeout:  time.Minute,
		Workers:  3,
	}, opts)
}
