package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specvital/grammarsnap/pkg/compare"
	"github.com/specvital/grammarsnap/pkg/fixture"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the sections of a fixture and the lines they start on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fixture.ReadFile(args[0])
			if err != nil {
				return err
			}
			printFixture(cmd.OutOrStdout(), args[0], f)
			return nil
		},
	}
}

func printFixture(w io.Writer, path string, f *fixture.TestCaseFile) {
	eol := "LF"
	if f.LineEnding == fixture.CRLF {
		eol = "CRLF"
	}
	fmt.Fprintf(w, "file:        %s\n", path)
	fmt.Fprintf(w, "comparator:  %s\n", compare.ForFile(path).Name())
	fmt.Fprintf(w, "line ending: %s\n", eol)

	sections := []struct {
		name string
		line int
		text string
	}{
		{name: "code", line: f.CodeLineStart(), text: f.Code},
		{name: "expected", line: f.ExpectedLineStart(), text: f.Expected},
		{name: "description", line: f.DescriptionLineStart(), text: f.Description},
	}
	for _, s := range sections {
		if s.text == "" {
			fmt.Fprintf(w, "\n[%s] empty\n", s.name)
			continue
		}
		fmt.Fprintf(w, "\n[%s] line %d\n%s\n", s.name, s.line, s.text)
	}
}
