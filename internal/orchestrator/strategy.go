package orchestrator

// #region imports
import (
	"log"

	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #endregion

// #region protocol-definitions

// Protocols holds the built-in protocol configs. Self-consistency reuses
// its single phase for every vote.
var Protocols = map[ProtocolID]ProtocolConfig{
	ProtocolIO: {
		ID:     ProtocolIO,
		Phases: []PhaseConfig{{Constraint: prompt.ConstraintDirect, Attempts: 2, MaxTokens: 100}},
	},
	ProtocolSC: {
		ID:     ProtocolSC,
		Phases: []PhaseConfig{{Constraint: prompt.ConstraintDirect, Attempts: 2, MaxTokens: 100}},
	},
	ProtocolCoT: {
		ID:     ProtocolCoT,
		Phases: []PhaseConfig{{Constraint: prompt.ConstraintReasoned, Attempts: 3, MaxTokens: 500}},
	},
	ProtocolToT: {
		ID: ProtocolToT,
		Phases: []PhaseConfig{
			{Constraint: prompt.ConstraintProposal, Attempts: 2, MaxTokens: 200},
			{Constraint: prompt.ConstraintSelection, Attempts: 2, MaxTokens: 100},
		},
	},
}

// #endregion

// #region selector

// ProtocolSelector resolves the configured protocol, consulting outcome
// memory when the configuration asks for auto.
type ProtocolSelector struct {
	memory *OutcomeMemory // nil = no learning
}

// NewProtocolSelector creates a selector with optional memory backing.
func NewProtocolSelector(memory *OutcomeMemory) *ProtocolSelector {
	return &ProtocolSelector{memory: memory}
}

// AutoOrder is the order in which auto tries protocols that lack history.
var AutoOrder = []ProtocolID{ProtocolIO, ProtocolSC, ProtocolCoT, ProtocolToT}

// Select returns the config for configured. Auto first runs each protocol
// in AutoOrder until it has minSamples recorded turns, then uses the
// learned best protocol. Without memory auto is io.
func (s *ProtocolSelector) Select(configured ProtocolID) ProtocolConfig {
	if cfg, ok := Protocols[configured]; ok {
		return cfg
	}
	if s.memory == nil {
		return Protocols[ProtocolIO]
	}
	counts, err := s.memory.SampleCounts()
	if err != nil {
		log.Printf("[ORCH] auto: sample counts: %v", err)
		return Protocols[ProtocolIO]
	}
	for _, id := range AutoOrder {
		if counts[id] < minSamples {
			return Protocols[id]
		}
	}
	learned, _, err := s.memory.BestProtocol()
	if err == nil && learned != "" {
		if cfg, ok := Protocols[learned]; ok {
			return cfg
		}
	}
	return Protocols[ProtocolIO]
}

// #endregion
