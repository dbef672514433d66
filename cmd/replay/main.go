package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/battle-agent/internal/dex"
	"github.com/danielpatrickdp/battle-agent/internal/logging"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
	"github.com/danielpatrickdp/battle-agent/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	protocol := flag.String("protocol", "", "override the fixture's protocol (io, sc, cot, tot)")
	refDir := flag.String("reference", "", "directory with enrichment tables (optional)")
	traceDir := flag.String("traces", "", "write decision traces to DIR/output.jsonl (optional)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--protocol p] [--reference dir] [--traces dir] [--json]")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath, *protocol, *refDir, *traceDir, *jsonOut))
}

// #endregion main

// #region run

func run(path, protocol, refDir, traceDir string, jsonOut bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if protocol != "" {
		f.Protocol = protocol
	}

	ref, err := dex.LoadReference(refDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load reference: %v\n", err)
		return 2
	}

	var opts orchestrator.Options
	if traceDir != "" {
		sink, err := logging.OpenJSONL(traceDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open traces: %v\n", err)
			return 2
		}
		defer sink.Close()
		opts.Sink = sink
	}

	results, sum, err := replay.Run(context.Background(), f, prompt.NewEncoder(nil, ref), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if jsonOut {
		if err := printJSON(map[string]any{"fixture": filepath.Base(path), "results": results, "summary": sum}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	} else {
		printComparison(results, sum)
	}

	if sum.Matches < sum.Turns {
		return 1
	}
	return 0
}

// #endregion run

// #region output

// printComparison outputs a comparison table with one row per turn.
func printComparison(results []replay.TurnResult, sum replay.Summary) {
	fmt.Printf("%-6s| %-24s| %-24s| %-6s| %-5s| %s\n", "Turn", "Expected", "Replayed", "Calls", "Via", "Match")
	fmt.Printf("%-6s+%-25s+%-25s+%-7s+%-6s+%s\n",
		"------", "-------------------------", "-------------------------", "-------", "------", "------")

	for _, r := range results {
		exp := r.Expected
		if exp == "" {
			exp = "-"
		}
		via := string(r.Protocol)
		if r.Fallback {
			via = "fb"
		}
		match := "DIFF"
		if r.Match {
			match = "OK"
		}
		fmt.Printf("%-6d| %-24s| %-24s| %-6d| %-5s| %s\n", r.Turn, exp, r.Action.String(), r.Calls, via, match)
	}

	fmt.Printf("\nSummary: %d turns, %d match, %d fallback, %d bypass, %d calls\n",
		sum.Turns, sum.Matches, sum.Fallbacks, sum.Bypasses, sum.Calls)
	fmt.Printf("Beat score: %.2f | Remain score: %.2f | Won: %v\n", sum.BeatScore, sum.RemainScore, sum.Won)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
