package logging

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	_ "modernc.org/sqlite"
)

// #endregion imports

// #region schema

const traceSchema = `
CREATE TABLE IF NOT EXISTS decision_traces (
	id            TEXT PRIMARY KEY,
	battle_tag    TEXT NOT NULL,
	turn          INTEGER NOT NULL,
	protocol      TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	user_prompts  TEXT NOT NULL,
	outputs       TEXT NOT NULL,
	action_kind   TEXT,
	action_target TEXT,
	fallback      INTEGER NOT NULL DEFAULT 0,
	errors        INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decision_traces_battle
ON decision_traces(battle_tag, turn);
`

// #endregion schema

// #region open

// OpenDB opens a SQLite database in WAL mode.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	return db, nil
}

// #endregion open

// #region store

// TraceStore keeps decision traces in SQLite for later inspection.
type TraceStore struct {
	db *sql.DB
}

// NewTraceStore runs the decision_traces migration on db.
func NewTraceStore(db *sql.DB) (*TraceStore, error) {
	if _, err := db.Exec(traceSchema); err != nil {
		return nil, fmt.Errorf("migrate decision_traces: %w", err)
	}
	return &TraceStore{db: db}, nil
}

// #endregion store

// #region record

// Record inserts a trace. Traces are write-once, so a duplicate ID fails.
func (s *TraceStore) Record(tr DecisionTrace) error {
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now().UTC()
	}
	prompts, err := json.Marshal(nonNil(tr.UserPrompts))
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	outputs, err := json.Marshal(nonNil(tr.Outputs))
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}
	fallback := 0
	if tr.Fallback {
		fallback = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO decision_traces (id, battle_tag, turn, protocol, system_prompt, user_prompts, outputs, action_kind, action_target, fallback, errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID,
		tr.BattleTag,
		tr.Turn,
		tr.Protocol,
		tr.SystemPrompt,
		string(prompts),
		string(outputs),
		nullIfEmpty(string(tr.Action.Kind)),
		nullIfEmpty(tr.Action.Target),
		fallback,
		tr.Errors,
		tr.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record trace: %w", err)
	}
	return nil
}

// #endregion record

// #region query

const traceColumns = `id, battle_tag, turn, protocol, system_prompt, user_prompts, outputs, action_kind, action_target, fallback, errors, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrace(row rowScanner) (DecisionTrace, error) {
	var (
		tr               DecisionTrace
		prompts, outputs string
		kind, target     sql.NullString
		fallback         int
		createdAt        string
	)
	if err := row.Scan(&tr.ID, &tr.BattleTag, &tr.Turn, &tr.Protocol, &tr.SystemPrompt,
		&prompts, &outputs, &kind, &target, &fallback, &tr.Errors, &createdAt); err != nil {
		return DecisionTrace{}, err
	}
	if err := json.Unmarshal([]byte(prompts), &tr.UserPrompts); err != nil {
		return DecisionTrace{}, fmt.Errorf("decode prompts of %s: %w", tr.ID, err)
	}
	if err := json.Unmarshal([]byte(outputs), &tr.Outputs); err != nil {
		return DecisionTrace{}, fmt.Errorf("decode outputs of %s: %w", tr.ID, err)
	}
	tr.Action = battle.Action{Kind: battle.ActionKind(kind.String), Target: target.String}
	tr.Fallback = fallback != 0
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return DecisionTrace{}, fmt.Errorf("parse created_at of %s: %w", tr.ID, err)
	}
	tr.CreatedAt = t
	return tr, nil
}

// Get returns one trace by ID.
func (s *TraceStore) Get(id string) (DecisionTrace, error) {
	tr, err := scanTrace(s.db.QueryRow(`SELECT `+traceColumns+` FROM decision_traces WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return DecisionTrace{}, fmt.Errorf("trace %s not found", id)
	}
	return tr, err
}

// List returns the most recent traces, newest first. An empty battleTag
// matches every battle.
func (s *TraceStore) List(battleTag string, limit int) ([]DecisionTrace, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+traceColumns+` FROM decision_traces
		WHERE (? = '' OR battle_tag = ?)
		ORDER BY created_at DESC, turn DESC
		LIMIT ?`, battleTag, battleTag, limit)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var out []DecisionTrace
	for rows.Next() {
		tr, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// #endregion query

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// #endregion helpers
