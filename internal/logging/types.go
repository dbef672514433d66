package logging

// #region imports
import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
)

// #endregion imports

// #region decision-trace

// DecisionTrace is the write-once record of one turn's decision.
type DecisionTrace struct {
	ID           string
	BattleTag    string
	Turn         int
	Protocol     string
	SystemPrompt string
	UserPrompts  []string // one per distinct prompt sent
	Outputs      []string // one per backend reply received
	Action       battle.Action
	Fallback     bool
	Errors       int // swallowed backend and parse failures
	CreatedAt    time.Time
}

// Sink persists traces.
type Sink interface {
	Record(tr DecisionTrace) error
}

// #endregion decision-trace

// #region trace-json

// MarshalJSON writes the flat audit line. A single prompt or output uses
// the bare key; several are numbered from 1.
func (tr DecisionTrace) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"id":            tr.ID,
		"turn":          tr.Turn,
		"protocol":      tr.Protocol,
		"system_prompt": tr.SystemPrompt,
		"action":        tr.Action,
		"fallback":      tr.Fallback,
		"errors":        tr.Errors,
		"battle_tag":    tr.BattleTag,
		"created_at":    tr.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	numbered(m, "user_prompt", tr.UserPrompts)
	numbered(m, "llm_output", tr.Outputs)
	return json.Marshal(m)
}

func numbered(m map[string]any, key string, values []string) {
	if len(values) == 1 {
		m[key] = values[0]
		return
	}
	for i, v := range values {
		m[fmt.Sprintf("%s%d", key, i+1)] = v
	}
}

// #endregion trace-json
