package compare

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
)

type fakeInstance struct {
	stream domain.TokenStream
	markup string
	err    error
}

func (f fakeInstance) Tokenize(context.Context, string, domain.LanguageID) (domain.TokenStream, error) {
	return f.stream, f.err
}

func (f fakeInstance) HighlightToMarkup(context.Context, string, domain.LanguageID) (string, error) {
	return f.markup, f.err
}

func (fakeInstance) ResolveLanguage(domain.LanguageID) *engine.Grammar { return nil }

var constStream = domain.TokenStream{
	{Type: "keyword", Text: "const"},
	domain.Plain(" a = "),
	{Type: "number", Text: "1"},
	domain.Plain(";"),
	domain.Plain("\n"),
}

const constRendered = `[
	["keyword", "const"],
	" a = ",
	["number", "1"],
	";"
]`

func TestForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "testdata/markup/a.test", want: "token-stream"},
		{path: "testdata/markup/a.html.test", want: "markup"},
		{path: "a.html.test", want: "markup"},
		{path: "html.test", want: "token-stream"},
		{path: "dir.html.test/a.test", want: "token-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ForFile(tt.path).Name())
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should prefer higher priority rules", func(t *testing.T) {
		t.Parallel()

		// Given
		r := NewRegistry(TokenStreamComparator{})
		r.Register(".x.test", DefaultPriority, TokenStreamComparator{})
		r.Register(".test", DefaultPriority+1, RenderedMarkupComparator{})

		// When
		got := r.ForFile("case.x.test")

		// Then
		assert.Equal(t, "markup", got.Name())
	})

	t.Run("should find comparators by name", func(t *testing.T) {
		t.Parallel()

		r := DefaultRegistry()

		assert.Equal(t, "markup", r.FindByName("markup").Name())
		assert.Equal(t, "token-stream", r.FindByName("token-stream").Name())
		assert.Nil(t, r.FindByName("unknown"))
	})
}

func TestSimplify(t *testing.T) {
	t.Parallel()

	stream := domain.TokenStream{
		{Type: "string", Alias: []string{"template"}, Content: domain.TokenStream{
			{Type: "punctuation", Text: "`"},
			domain.Plain("x"),
			domain.Plain("  "),
			{Type: "punctuation", Text: "`"},
		}},
		domain.Plain(" \t\n"),
		domain.Plain(" ;"),
	}

	got := Simplify(stream)

	want := []any{
		[]any{"string", []any{
			[]any{"punctuation", "`"},
			"x",
			[]any{"punctuation", "`"},
		}},
		" ;",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Simplify() mismatch (-want +got):\n%s", diff)
	}
}

func TestMinify(t *testing.T) {
	t.Parallel()

	got, err := Minify(Simplify(domain.TokenStream{
		{Type: "tag", Text: "<p>"},
		domain.Plain("a & b"),
	}))

	require.NoError(t, err)
	assert.Equal(t, `[["tag","<p>"],"a & b"]`, got)
}

func TestTokenStreamComparator_Execute(t *testing.T) {
	t.Parallel()

	c := TokenStreamComparator{}

	got, err := c.Execute(context.Background(), fakeInstance{stream: constStream}, "const a = 1;", "javascript")
	require.NoError(t, err)
	assert.Equal(t, constStream, got)

	_, err = c.Execute(context.Background(), fakeInstance{err: engine.ErrLanguageNotLoaded}, "", "css")
	assert.ErrorIs(t, err, engine.ErrLanguageNotLoaded)
}

func TestTokenStreamComparator_Render(t *testing.T) {
	t.Parallel()

	c := TokenStreamComparator{}

	t.Run("flat stream", func(t *testing.T) {
		t.Parallel()

		got, err := c.Render(constStream)

		require.NoError(t, err)
		assert.Equal(t, constRendered, got)
	})

	t.Run("nested stream", func(t *testing.T) {
		t.Parallel()

		got, err := c.Render(domain.TokenStream{
			{Type: "string", Content: domain.TokenStream{
				{Type: "punctuation", Text: "`"},
				domain.Plain("x"),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "[\n\t[\n\t\t\"string\",\n\t\t[\n\t\t\t[\"punctuation\", \"`\"],\n\t\t\t\"x\"\n\t\t]\n\t]\n]", got)
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		got, err := c.Render(domain.TokenStream{})

		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("wrong value type", func(t *testing.T) {
		t.Parallel()

		_, err := c.Render("markup")

		assert.ErrorIs(t, err, ErrUnexpectedValue)
	})

	t.Run("rendering re-minifies to the canonical form", func(t *testing.T) {
		t.Parallel()

		stream := domain.TokenStream{
			{Type: "string", Content: domain.TokenStream{
				{Type: "escape", Text: `\n`},
				domain.Plain(`"quoted" <b>`),
			}},
			domain.Plain("é"),
		}

		rendered, err := c.Render(stream)
		require.NoError(t, err)

		var parsed any
		require.NoError(t, json.Unmarshal([]byte(rendered), &parsed))
		fromRendered, err := Minify(parsed)
		require.NoError(t, err)
		direct, err := Minify(Simplify(stream))
		require.NoError(t, err)

		assert.Equal(t, direct, fromRendered)
	})
}

func TestTokenStreamComparator_Equals(t *testing.T) {
	t.Parallel()

	c := TokenStreamComparator{}

	tests := []struct {
		name     string
		expected string
		want     bool
	}{
		{name: "rendered form", expected: constRendered, want: true},
		{name: "compact form", expected: `[["keyword","const"]," a = ",["number","1"],";"]`, want: true},
		{name: "escaped form", expected: `[["keyword","const"]," a \u003d ",["number","1"],";"]`, want: true},
		{name: "different token", expected: `[["keyword","const"]," a = ",["number","2"],";"]`, want: false},
		{name: "missing token", expected: `[["keyword","const"]]`, want: false},
		{name: "malformed json", expected: `[["keyword",`, want: false},
		{name: "empty", expected: ``, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, c.Equals(constStream, tt.expected))
		})
	}

	assert.False(t, c.Equals(42, "[]"))
}

func TestTokenStreamComparator_AssertEqual(t *testing.T) {
	t.Parallel()

	c := TokenStreamComparator{}
	loc := Location{Path: "testdata/js/const.test", Description: "Checks const.", ExpectedLineStart: 7}

	t.Run("should pass when equal", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, c.AssertEqual(constStream, constRendered, loc))
	})

	t.Run("should point at the first divergence in the file", func(t *testing.T) {
		t.Parallel()

		// Given
		expected := `[
	["keyword", "const"],
	" a = ",
	["number", "2"],
	";"
]`

		// When
		err := c.AssertEqual(constStream, expected, loc)

		// Then
		require.ErrorIs(t, err, ErrExpectationMismatch)
		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 10, mismatch.Line)
		assert.Equal(t, 14, mismatch.Column)
		assert.Equal(t, constRendered, mismatch.Actual)
		assert.Contains(t, mismatch.Diff, `-	["number", "2"],`)
		assert.Contains(t, mismatch.Diff, `+	["number", "1"],`)
		assert.Contains(t, err.Error(), "Checks const.")
		assert.Contains(t, err.Error(), "testdata/js/const.test:10:14")
		assert.Contains(t, err.Error(), constRendered)
	})

	t.Run("should report line relative to section without line info", func(t *testing.T) {
		t.Parallel()

		err := c.AssertEqual(constStream, `[["keyword","let"]]`, Location{Path: "x.test"})

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 1, mismatch.Line)
		assert.Equal(t, 14, mismatch.Column)
	})

	t.Run("should report unparsable expectations distinctly", func(t *testing.T) {
		t.Parallel()

		err := c.AssertEqual(constStream, `[["keyword",`, loc)

		require.ErrorIs(t, err, ErrUnparsableExpectedData)
		assert.False(t, errors.Is(err, ErrExpectationMismatch))
		var syntaxErr *json.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
		assert.Contains(t, err.Error(), "testdata/js/const.test:7")
	})
}

func TestNormalizeMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "inline markup",
			input: `<span class="token keyword">const</span> a`,
			want:  "<span class=\"token keyword\">\nconst\n</span>\na",
		},
		{
			name:  "indented markup",
			input: "  <span class=\"token keyword\">\n\t\tconst\n\t</span>  \n\n a  ",
			want:  "<span class=\"token keyword\">\nconst\n</span>\na",
		},
		{
			name:  "crlf",
			input: "<b>\r\n  x\r\n</b>",
			want:  "<b>\nx\n</b>",
		},
		{
			name:  "inner spaces are kept",
			input: "<b>a  b</b>",
			want:  "<b>\na  b\n</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, NormalizeMarkup(tt.input))
		})
	}
}

func TestRenderedMarkupComparator(t *testing.T) {
	t.Parallel()

	c := RenderedMarkupComparator{}
	actual := `<span class="token string"><span class="token punctuation">"</span>x<span class="token punctuation">"</span></span>;`

	t.Run("execute returns highlighted markup", func(t *testing.T) {
		t.Parallel()

		got, err := c.Execute(context.Background(), fakeInstance{markup: actual}, `"x";`, "javascript")

		require.NoError(t, err)
		assert.Equal(t, actual, got)
	})

	t.Run("render indents nested elements", func(t *testing.T) {
		t.Parallel()

		got, err := c.Render(actual)

		require.NoError(t, err)
		assert.Equal(t, `<span class="token string">
	<span class="token punctuation">
		"
	</span>
	x
	<span class="token punctuation">
		"
	</span>
</span>
;`, got)
		assert.Equal(t, NormalizeMarkup(actual), NormalizeMarkup(got))
	})

	t.Run("equals ignores layout", func(t *testing.T) {
		t.Parallel()

		rendered, err := c.Render(actual)
		require.NoError(t, err)

		assert.True(t, c.Equals(actual, rendered))
		assert.True(t, c.Equals(actual, actual))
		assert.False(t, c.Equals(actual, `<span class="token string">x</span>;`))
		assert.False(t, c.Equals(domain.TokenStream{}, actual))
	})

	t.Run("assert equal reports normalized forms", func(t *testing.T) {
		t.Parallel()

		loc := Location{Path: "a.html.test", Description: "Strings.", ExpectedLineStart: 3}

		assert.NoError(t, c.AssertEqual(actual, actual, loc))

		err := c.AssertEqual(actual, `<span class="token string">x</span>;`, loc)
		require.ErrorIs(t, err, ErrExpectationMismatch)

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Zero(t, mismatch.Line)
		assert.Zero(t, mismatch.Column)
		assert.Equal(t, "<span class=\"token string\">\nx\n</span>\n;", mismatch.Expected)
		assert.Equal(t, NormalizeMarkup(actual), mismatch.Actual)
		assert.Contains(t, err.Error(), "a.html.test:0:0")
	})
}
