package prompt

// #region imports
import (
	"errors"
	"strings"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/dex"
)

// #endregion imports

// ErrNoActive is returned for a state without an active pokemon.
var ErrNoActive = errors.New("prompt: state has no active pokemon")

// #region encoder

// Encoder turns a battle snapshot into prompts. It only reads its chart
// and reference tables, so one Encoder can serve many battles at once.
type Encoder struct {
	chart *dex.Chart
	ref   *dex.Reference
}

// NewEncoder builds an encoder. A nil chart uses the embedded chart and a
// nil reference disables enrichment.
func NewEncoder(chart *dex.Chart, ref *dex.Reference) *Encoder {
	if chart == nil {
		chart = dex.DefaultChart()
	}
	if ref == nil {
		ref = dex.EmptyReference()
	}
	return &Encoder{chart: chart, ref: ref}
}

// #endregion encoder

// #region prompts

// Prompts is one turn's encoding. State is the user prompt body before a
// protocol's output instructions are appended.
type Prompts struct {
	System      string
	State       string
	Replacement bool
	LastAction  string
}

// User appends the output instructions for c and the last-action reminder
// to the state. options fills the selection placeholder and is ignored by
// the other constraints.
func (p Prompts) User(c Constraint, options string) string {
	table := turnConstraints
	if p.Replacement {
		table = replacementConstraints
	}
	instr := table[c]
	if c == ConstraintSelection {
		instr = strings.Replace(instr, OptionsPlaceholder, options, 1)
	}
	return p.State + instr + reminder(p.LastAction)
}

// #endregion prompts

// #region encode

// Encode builds the system prompt and state prompt for a turn. The output
// depends only on st and last.
func (e *Encoder) Encode(st *battle.BattleState, last battle.Action) (Prompts, error) {
	if st == nil || st.ActivePokemon() == nil {
		return Prompts{}, ErrNoActive
	}

	var b strings.Builder
	if h := History(st.History, st.Player); h != "" {
		b.WriteString(h)
		b.WriteString("\n")
	}
	b.WriteString("Current battle state:\n")
	b.WriteString(e.Opponent(st))

	p := Prompts{LastAction: last.String()}
	if st.NeedsReplacement() {
		b.WriteString(e.Switches(st))
		p.System = replacementSystem(st.ActivePokemon().Species)
		p.Replacement = true
	} else {
		b.WriteString(e.Active(st))
		b.WriteString(SideConditions(st.SideConditions))
		b.WriteString(e.Moves(st))
		b.WriteString(e.Switches(st))
		p.System = normalSystem(p.LastAction)
	}
	p.State = b.String()
	return p, nil
}

// #endregion encode
