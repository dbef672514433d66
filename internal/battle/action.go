package battle

// #region imports
import (
	"encoding/json"
	"fmt"
)

// #endregion imports

// #region action

// ActionKind tags an Action.
type ActionKind string

const (
	KindMove   ActionKind = "move"
	KindSwitch ActionKind = "switch"
)

// Action is the single decision returned to the simulator each turn.
// Target is a move ID for KindMove and a species for KindSwitch.
type Action struct {
	Kind   ActionKind
	Target string
}

// MoveAction selects a move by ID.
func MoveAction(moveID string) Action {
	return Action{Kind: KindMove, Target: moveID}
}

// SwitchAction selects a switch target by species.
func SwitchAction(species string) Action {
	return Action{Kind: KindSwitch, Target: species}
}

// IsZero reports an unset action.
func (a Action) IsZero() bool {
	return a.Kind == "" && a.Target == ""
}

// Equal compares kind and target exactly.
func (a Action) Equal(b Action) bool {
	return a.Kind == b.Kind && a.Target == b.Target
}

// String renders "move psychic" / "switch garchomp"; it is the text fed
// back into the next prompt as the previous action.
func (a Action) String() string {
	if a.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Target)
}

// MarshalJSON emits the flat decision shape {"move": id} / {"switch": species}.
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindMove, KindSwitch:
		return json.Marshal(map[string]string{string(a.Kind): a.Target})
	default:
		return []byte("null"), nil
	}
}

// #endregion action
