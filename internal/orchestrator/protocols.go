package orchestrator

// #region imports
import (
	"context"
	"log"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/parse"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #endregion

// run executes one protocol. ok=false means the caller must fall back.
func (t *turn) run(ctx context.Context, cfg ProtocolConfig, p prompt.Prompts, st *battle.BattleState) (battle.Action, bool) {
	switch cfg.ID {
	case ProtocolSC:
		return t.selfConsistency(ctx, cfg.Phases[0], p, st)
	case ProtocolToT:
		return t.treeOfThought(ctx, cfg.Phases[0], cfg.Phases[1], p, st)
	default:
		// io and cot differ only in their phase config
		phase := cfg.Phases[0]
		return t.callAction(ctx, p.User(phase.Constraint, ""), phase, flatParser(st))
	}
}

// #region self-consistency

// selfConsistency takes two independent votes. Agreement wins outright;
// disagreement gets one tie-break vote, and the first vote stands if the
// tie-break fails. A single surviving vote is used as is.
func (t *turn) selfConsistency(ctx context.Context, phase PhaseConfig, p prompt.Prompts, st *battle.BattleState) (battle.Action, bool) {
	user := p.User(phase.Constraint, "")
	parser := flatParser(st)

	first, ok1 := t.callAction(ctx, user, phase, parser)
	second, ok2 := t.callAction(ctx, user, phase, parser)

	switch {
	case ok1 && ok2:
		if first.Equal(second) {
			return first, true
		}
		log.Printf("[ORCH] %s sc: votes differ (%s vs %s), tie-break", t.tag, first, second)
		if third, ok := t.callAction(ctx, user, phase, parser); ok {
			return third, true
		}
		return first, true
	case ok1:
		return first, true
	case ok2:
		return second, true
	default:
		return battle.Action{}, false
	}
}

// #endregion

// #region tree-of-thought

// treeOfThought asks for ranked options, then for a nested decision among
// them. No proposal means no selection round.
func (t *turn) treeOfThought(ctx context.Context, propose, choose PhaseConfig, p prompt.Prompts, st *battle.BattleState) (battle.Action, bool) {
	options, ok := t.call(ctx, p.User(propose.Constraint, ""), propose, nonEmpty)
	if !ok {
		log.Printf("[ORCH] %s tot: no proposal, skipping selection", t.tag)
		return battle.Action{}, false
	}
	if opts, err := parse.Options(options); err == nil {
		log.Printf("[ORCH] %s tot: %d options proposed", t.tag, len(opts))
	} else {
		log.Printf("[ORCH] %s tot: proposal is not an option map (%v), passing it through", t.tag, err)
	}
	return t.callAction(ctx, p.User(choose.Constraint, options), choose, decisionParser(st))
}

// #endregion
