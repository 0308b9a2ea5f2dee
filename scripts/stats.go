//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/specvital/grammarsnap/pkg/engine"
	"github.com/specvital/grammarsnap/pkg/runner"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/stats.go <root>\n")
		os.Exit(1)
	}

	root := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	suite := runner.NewSuite(engine.NewTreeSitter(nil))
	result, err := suite.Run(ctx, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suite error: %v\n", err)
		os.Exit(1)
	}

	output := map[string]interface{}{
		"discovered": result.Stats.Discovered,
		"passed":     result.Stats.Passed,
		"failed":     result.Stats.Failed,
		"duration":   result.Stats.Duration.String(),
		"languages":  countLanguages(result),
	}
	json.NewEncoder(os.Stdout).Encode(output)
}

func countLanguages(result *runner.SuiteResult) map[string]int {
	counts := make(map[string]int)
	for _, res := range result.Results {
		counts[res.Language]++
	}
	return counts
}
