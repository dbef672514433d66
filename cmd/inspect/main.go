package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/battle-agent/internal/logging"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to battle_agent.db")
	last := flag.Int("last", 20, "show N most recent decisions")
	battleTag := flag.String("battle", "", "filter to one battle tag")
	traceID := flag.String("trace", "", "show single trace detail")
	stats := flag.Bool("stats", false, "show per-protocol outcome stats")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/battle_agent.db [--last N] [--battle tag] [--trace id] [--stats] [--json]")
		os.Exit(2)
	}

	db, err := logging.OpenDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch {
	case *stats:
		err = runStatsMode(db, *jsonOut)
	case *traceID != "":
		err = runDetailMode(db, *traceID, *jsonOut)
	default:
		err = runListMode(db, *battleTag, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ID        string `json:"id"`
	BattleTag string `json:"battle_tag"`
	Turn      int    `json:"turn"`
	Protocol  string `json:"protocol"`
	Action    string `json:"action"`
	Outputs   int    `json:"outputs"`
	Errors    int    `json:"errors"`
	Fallback  bool   `json:"fallback"`
	CreatedAt string `json:"created_at"`
}

func runListMode(db *sql.DB, battleTag string, last int, jsonOut bool) error {
	store, err := logging.NewTraceStore(db)
	if err != nil {
		return err
	}
	traces, err := store.List(battleTag, last)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	// store returns DESC, reverse for chronological
	rows := make([]listRow, len(traces))
	for i, tr := range traces {
		rows[len(traces)-1-i] = listRow{
			ID:        tr.ID,
			BattleTag: tr.BattleTag,
			Turn:      tr.Turn,
			Protocol:  tr.Protocol,
			Action:    tr.Action.String(),
			Outputs:   len(tr.Outputs),
			Errors:    tr.Errors,
			Fallback:  tr.Fallback,
			CreatedAt: tr.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-28s  %4s  %-8s  %-22s  %4s  %4s  %s\n",
		"Trace", "Battle", "Turn", "Protocol", "Action", "Out", "Err", "Time")
	fmt.Printf("%-10s+-%-28s+-%4s+-%-8s+-%-22s+-%4s+-%4s+-%s\n",
		"----------", "----------------------------", "----", "--------", "----------------------", "----", "----", "--------------------")
	for _, r := range rows {
		action := r.Action
		if r.Fallback {
			action += " (fb)"
		}
		fmt.Printf("%-10s  %-28s  %4d  %-8s  %-22s  %4d  %4d  %s\n",
			shortID(r.ID), r.BattleTag, r.Turn, r.Protocol, action, r.Outputs, r.Errors, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(db *sql.DB, id string, jsonOut bool) error {
	store, err := logging.NewTraceStore(db)
	if err != nil {
		return err
	}
	tr, err := store.Get(id)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(tr)
	}

	fmt.Printf("Trace:    %s\n", tr.ID)
	fmt.Printf("Battle:   %s (turn %d)\n", tr.BattleTag, tr.Turn)
	fmt.Printf("Created:  %s\n", tr.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Protocol: %s\n", tr.Protocol)
	fmt.Printf("Action:   %s\n", tr.Action)
	fmt.Printf("Fallback: %v\n", tr.Fallback)
	fmt.Printf("Errors:   %d\n", tr.Errors)

	fmt.Printf("\nSystem prompt:\n%s\n", indent(tr.SystemPrompt))
	for i, p := range tr.UserPrompts {
		fmt.Printf("\nUser prompt %d:\n%s\n", i+1, indent(p))
	}
	for i, o := range tr.Outputs {
		fmt.Printf("\nOutput %d:\n%s\n", i+1, indent(o))
	}
	return nil
}

// #endregion detail-mode

// #region stats-mode

func runStatsMode(db *sql.DB, jsonOut bool) error {
	mem, err := orchestrator.NewOutcomeMemory(db)
	if err != nil {
		return err
	}
	stats, err := mem.Stats()
	if err != nil {
		return err
	}
	best, score, err := mem.BestProtocol()
	if err != nil {
		return err
	}

	next := orchestrator.NewProtocolSelector(mem).Select(orchestrator.ProtocolAuto).ID

	if jsonOut {
		return printJSON(map[string]any{"protocols": stats, "best": best, "best_score": score, "auto_next": next})
	}

	fmt.Printf("%-8s  %6s  %9s  %6s  %6s  %s\n", "Protocol", "Turns", "Fallbacks", "Calls", "Errors", "Fallback rate")
	fmt.Printf("%-8s+-%6s+-%9s+-%6s+-%6s+-%s\n", "--------", "------", "---------", "------", "------", "-------------")
	for _, s := range stats {
		fmt.Printf("%-8s  %6d  %9d  %6d  %6d  %.2f\n",
			s.Protocol, s.Turns, s.Fallbacks, s.Calls, s.Errors, s.FallbackRate)
	}
	if best != "" {
		fmt.Printf("\nbest ranked: %s (decayed success %.2f)\n", best, score)
	}
	fmt.Printf("auto would pick: %s\n", next)
	return nil
}

// #endregion stats-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
