package parse

// #region imports
import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
)

// #endregion imports

// #region errors

// Reason classifies why generated text could not become an Action.
type Reason string

const (
	ReasonNoJSON        Reason = "no_json"
	ReasonBadJSON       Reason = "bad_json"
	ReasonMissingKey    Reason = "missing_key"
	ReasonUnknownMove   Reason = "unknown_move"
	ReasonUnknownSwitch Reason = "unknown_switch"
	ReasonBadAction     Reason = "bad_action"
)

// Error is returned for every rejected output.
type Error struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "parse: " + string(e.Reason)
	}
	return fmt.Sprintf("parse: %s: %s", e.Reason, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// #endregion errors

// #region normalize

var (
	folder   = cases.Fold()
	stripper = strings.NewReplacer(" ", "", "-", "", "_", "")
)

// Normalize case-folds a name and drops spaces, hyphens and underscores,
// so "Swords Dance", "swords-dance" and "swordsdance" compare equal.
func Normalize(name string) string {
	return stripper.Replace(folder.String(strings.TrimSpace(name)))
}

// #endregion normalize

// #region extract

// extractObject returns the text between the first '{' and the last '}'.
func extractObject(raw string) (map[string]json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fail(ReasonNoJSON, "no object delimiters in %d bytes", len(raw))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return nil, &Error{Reason: ReasonBadJSON, Detail: err.Error(), Err: err}
	}
	return obj, nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := obj[key]
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, &Error{Reason: ReasonBadAction, Detail: fmt.Sprintf("%q is not a string", key), Err: err}
	}
	return s, true, nil
}

// #endregion extract

// #region resolve

func resolveMove(name string, moves []battle.Move) (battle.Action, error) {
	want := Normalize(name)
	if want != "" {
		for _, m := range moves {
			if Normalize(m.ID) == want {
				return battle.MoveAction(m.ID), nil
			}
		}
	}
	return battle.Action{}, fail(ReasonUnknownMove, "%q is not a legal move", name)
}

func resolveSwitch(name string, switches []string) (battle.Action, error) {
	want := Normalize(name)
	if want != "" {
		for _, species := range switches {
			if Normalize(species) == want {
				return battle.SwitchAction(species), nil
			}
		}
	}
	return battle.Action{}, fail(ReasonUnknownSwitch, "%q is not a legal switch", name)
}

// #endregion resolve

// #region flat

// Action parses the flat shape {"move": name} or {"switch": name}. Prose
// around the object and an extra "thought" field are ignored. When both
// keys are present "move" wins.
func Action(raw string, moves []battle.Move, switches []string) (battle.Action, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return battle.Action{}, err
	}
	if name, ok, err := stringField(obj, "move"); err != nil {
		return battle.Action{}, err
	} else if ok {
		return resolveMove(name, moves)
	}
	if name, ok, err := stringField(obj, "switch"); err != nil {
		return battle.Action{}, err
	} else if ok {
		return resolveSwitch(name, switches)
	}
	return battle.Action{}, fail(ReasonMissingKey, `expected "move" or "switch"`)
}

// #endregion flat

// #region nested

type choice struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

func (c choice) resolve(moves []battle.Move, switches []string) (battle.Action, error) {
	switch battle.ActionKind(strings.ToLower(strings.TrimSpace(c.Action))) {
	case battle.KindMove:
		return resolveMove(c.Target, moves)
	case battle.KindSwitch:
		return resolveSwitch(c.Target, switches)
	default:
		return battle.Action{}, fail(ReasonBadAction, "action %q is neither move nor switch", c.Action)
	}
}

// Decision parses the nested selection shape
// {"decision": {"action": "move"|"switch", "target": name}}.
func Decision(raw string, moves []battle.Move, switches []string) (battle.Action, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return battle.Action{}, err
	}
	body, ok := obj["decision"]
	if !ok {
		return battle.Action{}, fail(ReasonMissingKey, `expected "decision"`)
	}
	var c choice
	if err := json.Unmarshal(body, &c); err != nil {
		return battle.Action{}, &Error{Reason: ReasonBadAction, Detail: "decision is not an object", Err: err}
	}
	return c.resolve(moves, switches)
}

// #endregion nested

// #region options

// Option is one ranked candidate from a tree-of-thought proposal.
type Option struct {
	Rank   string
	Action string
	Target string
}

// Options decodes {"option_1": {"action": ..., "target": ...}, ...} in key
// order. Candidates are not validated against the legal sets; the selection
// phase does that.
func Options(raw string) ([]Option, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if strings.HasPrefix(k, "option") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fail(ReasonMissingKey, `expected "option_N" keys`)
	}
	// option_10 sorts after option_9
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	out := make([]Option, 0, len(keys))
	for _, k := range keys {
		var c choice
		if err := json.Unmarshal(obj[k], &c); err != nil {
			return nil, &Error{Reason: ReasonBadAction, Detail: fmt.Sprintf("%s is not an object", k), Err: err}
		}
		out = append(out, Option{Rank: k, Action: c.Action, Target: c.Target})
	}
	return out, nil
}

func lessKey(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// #endregion options
