package orchestrator

// #region imports
import (
	"errors"
	"math/rand"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
)

// #endregion

// ErrNoLegalAction is returned for a state that allows neither a move nor
// a switch. The simulator never sends one.
var ErrNoLegalAction = errors.New("orchestrator: no legal action")

// Fallback picks the legal move with the highest base power, the first on
// ties. With no legal move it picks a legal switch uniformly at random.
func Fallback(st *battle.BattleState, rng *rand.Rand) (battle.Action, error) {
	if len(st.AvailableMoves) > 0 {
		best := st.AvailableMoves[0]
		for _, m := range st.AvailableMoves[1:] {
			if m.BasePower > best.BasePower {
				best = m
			}
		}
		return battle.MoveAction(best.ID), nil
	}
	if len(st.AvailableSwitches) > 0 {
		return battle.SwitchAction(st.AvailableSwitches[rng.Intn(len(st.AvailableSwitches))]), nil
	}
	return battle.Action{}, ErrNoLegalAction
}
