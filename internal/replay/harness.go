package replay

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #region types

// TurnResult captures the outcome of replaying one snapshot.
type TurnResult struct {
	Turn     int
	Action   battle.Action
	Protocol orchestrator.ProtocolID
	Fallback bool
	Bypassed bool
	Calls    int
	Unused   int // scripted replies the agent never asked for
	Expected string
	Match    bool // Expected is empty or equals Action
}

// Summary provides aggregate stats from a replay run. BeatScore sums the
// HP the opponent lost, RemainScore sums the HP the agent kept, both
// read from the last snapshot.
type Summary struct {
	RunID       string
	Turns       int
	Matches     int
	Fallbacks   int
	Bypasses    int
	Calls       int
	BeatScore   float64
	RemainScore float64
	Won         bool
}

// #endregion types

// #region switchable-backend

// turnScript lets one agent and session run across turns while each turn
// reads from its own script.
type turnScript struct {
	mu  sync.Mutex
	cur *backend.Scripted
}

func (t *turnScript) set(s *backend.Scripted) {
	t.mu.Lock()
	t.cur = s
	t.mu.Unlock()
}

func (t *turnScript) Generate(ctx context.Context, req backend.Request) (string, error) {
	t.mu.Lock()
	cur := t.cur
	t.mu.Unlock()
	return cur.Generate(ctx, req)
}

// #endregion switchable-backend

// #region replay

// Run replays every turn of f through one agent and session. The
// fixture's protocol overrides opts.Protocol when set.
func Run(ctx context.Context, f *Fixture, enc *prompt.Encoder, opts orchestrator.Options) ([]TurnResult, Summary, error) {
	if f.Protocol != "" {
		p, err := orchestrator.ParseProtocol(f.Protocol)
		if err != nil {
			return nil, Summary{}, err
		}
		opts.Protocol = p
	}
	if opts.Temperature == 0 {
		opts.Temperature = f.Temperature
	}

	gen := &turnScript{}
	agent := orchestrator.NewAgent(gen, enc, opts)

	sum := Summary{RunID: uuid.New().String(), Won: f.Won}
	results := make([]TurnResult, 0, len(f.Turns))
	var sess *orchestrator.Session

	for i := range f.Turns {
		ft := &f.Turns[i]
		st := &ft.State
		if sess == nil {
			sess = orchestrator.NewSession(st.Tag)
		}

		script := ft.Script()
		gen.set(script)

		d, err := agent.Decide(ctx, sess, st)
		if err != nil {
			return results, sum, fmt.Errorf("turn %d: %w", st.Turn, err)
		}

		r := TurnResult{
			Turn:     st.Turn,
			Action:   d.Action,
			Protocol: d.Protocol,
			Fallback: d.Fallback,
			Bypassed: d.Bypassed,
			Calls:    d.Calls,
			Unused:   script.Remaining(),
			Expected: ft.Expected,
			Match:    ft.Expected == "" || strings.EqualFold(ft.Expected, d.Action.String()),
		}
		results = append(results, r)

		sum.Turns++
		sum.Calls += r.Calls
		if r.Match {
			sum.Matches++
		}
		if r.Fallback {
			sum.Fallbacks++
		}
		if r.Bypassed {
			sum.Bypasses++
		}
	}

	if n := len(f.Turns); n > 0 {
		sum.BeatScore, sum.RemainScore = Scores(&f.Turns[n-1].State)
	}
	return results, sum, nil
}

// #endregion replay

// #region scores

// Scores returns (damage dealt, HP kept) as sums of HP fractions over the
// known opponent team and the agent's team. Fainted pokemon count as 0 HP.
func Scores(st *battle.BattleState) (beat, remain float64) {
	for _, p := range st.OpponentTeam {
		beat += 1 - hp(p)
	}
	for _, p := range st.Team {
		remain += hp(p)
	}
	return beat, remain
}

func hp(p *battle.Pokemon) float64 {
	if p.Fainted {
		return 0
	}
	return p.HPFraction
}

// #endregion scores
