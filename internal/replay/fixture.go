package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/battle"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one
// battle's recorded snapshots with the backend replies to replay.
type Fixture struct {
	Description string        `json:"description"`
	Protocol    string        `json:"protocol"`
	Temperature float64       `json:"temperature"`
	Won         bool          `json:"won"` // battle result as recorded by the simulator
	Turns       []FixtureTurn `json:"turns"`
}

// FixtureTurn is one snapshot, the replies the backend gave for it, and
// optionally the action expected ("move psychic", "switch garchomp").
type FixtureTurn struct {
	State    battle.BattleState `json:"state"`
	Outputs  []FixtureOutput    `json:"outputs"`
	Expected string             `json:"expected,omitempty"`
}

// FixtureOutput is one backend reply, or an error message to return instead.
type FixtureOutput struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Script converts the turn's outputs into scripted backend replies.
func (ft *FixtureTurn) Script() *backend.Scripted {
	replies := make([]backend.Reply, len(ft.Outputs))
	for i, o := range ft.Outputs {
		if o.Error != "" {
			replies[i] = backend.Reply{Err: errors.New(o.Error)}
			continue
		}
		replies[i] = backend.Reply{Text: o.Text}
	}
	return backend.NewScripted(replies...)
}

// #endregion fixture-loader
