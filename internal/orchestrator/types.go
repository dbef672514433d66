package orchestrator

// #region imports
import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #endregion

// #region protocol-id

// ProtocolID identifies a decision protocol.
type ProtocolID string

const (
	ProtocolIO  ProtocolID = "io"  // one direct call
	ProtocolSC  ProtocolID = "sc"  // self-consistency vote
	ProtocolCoT ProtocolID = "cot" // chain of thought
	ProtocolToT ProtocolID = "tot" // propose then select
	// ProtocolAuto runs each protocol until it has 3 recorded turns, then
	// picks the one with the best recorded history.
	ProtocolAuto ProtocolID = "auto"
)

// ParseProtocol accepts io, sc, cot, tot and auto in any case.
func ParseProtocol(s string) (ProtocolID, error) {
	p := ProtocolID(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProtocolIO, ProtocolSC, ProtocolCoT, ProtocolToT, ProtocolAuto:
		return p, nil
	}
	return "", fmt.Errorf("unknown prompt_algo %q (want io, sc, cot, tot or auto)", s)
}

// #endregion

// #region phase-config

// PhaseConfig is one backend round: which output instructions to append,
// how many attempts the round gets and the token budget per attempt.
type PhaseConfig struct {
	Constraint prompt.Constraint
	Attempts   int
	MaxTokens  int
}

// ProtocolConfig lists a protocol's rounds in order.
type ProtocolConfig struct {
	ID     ProtocolID
	Phases []PhaseConfig
}

// #endregion

// #region decision

// Decision is the outcome of one turn.
type Decision struct {
	Action   battle.Action
	Protocol ProtocolID
	Fallback bool
	Bypassed bool // resolved without calling the backend
	Calls    int
	Errors   int
	TraceID  string
}

// #endregion

// #region outcome-record

// OutcomeRecord is a single row for protocol_outcomes.
type OutcomeRecord struct {
	TraceID   string
	BattleTag string
	Turn      int
	Protocol  ProtocolID
	Calls     int
	Errors    int
	Fallback  bool
	CreatedAt time.Time
}

// #endregion
