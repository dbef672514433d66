package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/config"
	"github.com/danielpatrickdp/battle-agent/internal/dex"
	"github.com/danielpatrickdp/battle-agent/internal/logging"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #region main
func main() {
	cfgPath := flag.String("config", "", "path to YAML config (optional)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment")
	sessionTTL := flag.Duration("session-ttl", time.Hour, "drop a battle's session after this long without a turn (0 keeps it)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	gen, err := backend.New(ctx, cfg.BackendConfig())
	if err != nil {
		log.Fatalf("failed to build backend: %v", err)
	}
	if c, ok := gen.(*backend.Codec); ok {
		defer c.Close()
	}

	ref, err := dex.LoadReference(cfg.ReferenceDir)
	if err != nil {
		log.Fatalf("failed to load reference data: %v", err)
	}

	// Trace sinks: JSONL always, SQLite when trace_db is set
	jsonl, err := logging.OpenJSONL(cfg.LogDir)
	if err != nil {
		log.Fatalf("failed to open trace log: %v", err)
	}
	defer jsonl.Close()
	sinks := []logging.Sink{jsonl}

	var memory *orchestrator.OutcomeMemory
	if cfg.TraceDB != "" {
		db, err := logging.OpenDB(cfg.TraceDB)
		if err != nil {
			log.Fatalf("failed to open trace db: %v", err)
		}
		defer db.Close()
		store, err := logging.NewTraceStore(db)
		if err != nil {
			log.Fatalf("failed to init trace store: %v", err)
		}
		sinks = append(sinks, store)
		memory, err = orchestrator.NewOutcomeMemory(db)
		if err != nil {
			log.Fatalf("failed to init outcome memory: %v", err)
		}
	}

	agent := orchestrator.NewAgent(gen, prompt.NewEncoder(dex.DefaultChart(), ref), orchestrator.Options{
		Protocol:    cfg.Protocol(),
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		Sink:        logging.Multi(sinks...),
		Memory:      memory,
	})

	log.Printf("battle agent ready: backend=%s model=%s protocol=%s logs=%s",
		cfg.Backend, cfg.Model, cfg.PromptAlgo, cfg.LogDir)

	if err := serve(ctx, agent, newSessionTable(*sessionTTL), os.Stdin, os.Stdout); err != nil {
		log.Fatalf("turn loop: %v", err)
	}
}
// #endregion main

// #region sessions

// sessionTable keeps one Session per battle tag. Entries go away when the
// caller ends the battle or after ttl without a turn (0 keeps them).
type sessionTable struct {
	ttl  time.Duration
	byID map[string]*sessionEntry
}

type sessionEntry struct {
	sess *orchestrator.Session
	seen time.Time
}

func newSessionTable(ttl time.Duration) *sessionTable {
	return &sessionTable{ttl: ttl, byID: make(map[string]*sessionEntry)}
}

// get returns the battle's session, creating it on first sight, and drops
// sessions idle past ttl.
func (t *sessionTable) get(tag string, now time.Time) *orchestrator.Session {
	t.prune(now)
	e, ok := t.byID[tag]
	if !ok {
		e = &sessionEntry{sess: orchestrator.NewSession(tag)}
		t.byID[tag] = e
	}
	e.seen = now
	return e.sess
}

func (t *sessionTable) end(tag string) {
	delete(t.byID, tag)
}

func (t *sessionTable) prune(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	for tag, e := range t.byID {
		if now.Sub(e.seen) > t.ttl {
			log.Printf("session %s idle since %s, dropped", tag, e.seen.Format(time.RFC3339))
			delete(t.byID, tag)
		}
	}
}

func (t *sessionTable) size() int {
	return len(t.byID)
}

// #endregion sessions

// #region turn-loop

// control is the header every input line is checked for. A line with
// "ended": true closes the battle's session and gets no reply.
type control struct {
	Tag   string `json:"battle_tag"`
	Ended bool   `json:"ended"`
}

// serve reads one BattleState JSON object per line and writes one action
// per line. Malformed lines get a null action so the caller stays in step.
func serve(ctx context.Context, agent *orchestrator.Agent, sessions *sessionTable, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ctl control
		if err := json.Unmarshal(line, &ctl); err == nil && ctl.Ended {
			sessions.end(ctl.Tag)
			log.Printf("battle %s ended, %d sessions open", ctl.Tag, sessions.size())
			continue
		}

		var st battle.BattleState
		if err := json.Unmarshal(line, &st); err != nil {
			log.Printf("decode state: %v", err)
			if err := enc.Encode(battle.Action{}); err != nil {
				return err
			}
			continue
		}

		sess := sessions.get(st.Tag, time.Now())
		d, err := agent.Decide(ctx, sess, &st)
		if err != nil {
			log.Printf("decide %s turn %d: %v", st.Tag, st.Turn, err)
		}
		if err := enc.Encode(d.Action); err != nil {
			return err
		}
	}
	return scanner.Err()
}
// #endregion turn-loop
