package orchestrator

// #region imports
import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/parse"
)

// #endregion

// #region turn

// turn accumulates everything one decision sends and receives, for the trace.
type turn struct {
	gen         backend.Generator
	temperature float64
	timeout     time.Duration
	tag         string
	system      string
	prompts     []string
	outputs     []string
	calls       int
	errors      int
}

func (t *turn) addPrompt(user string) {
	for _, p := range t.prompts {
		if p == user {
			return
		}
	}
	t.prompts = append(t.prompts, user)
}

// #endregion

// #region bounded-call

// call makes up to phase.Attempts backend calls with the same prompts and
// returns the first reply accepted by accept. Every backend error and
// every rejected reply is logged and counted; none is returned.
func (t *turn) call(ctx context.Context, user string, phase PhaseConfig, accept func(raw string) error) (string, bool) {
	t.addPrompt(user)
	req := backend.Request{
		System:      t.system,
		User:        user,
		Temperature: t.temperature,
		MaxTokens:   phase.MaxTokens,
		JSONMode:    true,
	}
	for i := 0; i < phase.Attempts; i++ {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if t.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		}
		start := time.Now()
		out, err := t.gen.Generate(callCtx, req)
		cancel()
		t.calls++
		if err != nil {
			t.errors++
			log.Printf("[ORCH] %s attempt %d/%d: backend error after %s: %v",
				t.tag, i+1, phase.Attempts, time.Since(start).Round(time.Millisecond), err)
			continue
		}
		t.outputs = append(t.outputs, out)
		if err := accept(out); err != nil {
			t.errors++
			log.Printf("[ORCH] %s attempt %d/%d: rejected output: %v", t.tag, i+1, phase.Attempts, err)
			continue
		}
		return out, true
	}
	return "", false
}

// callAction is call with a parser that must yield a legal action.
func (t *turn) callAction(ctx context.Context, user string, phase PhaseConfig, parser func(string) (battle.Action, error)) (battle.Action, bool) {
	var act battle.Action
	_, ok := t.call(ctx, user, phase, func(raw string) error {
		a, err := parser(raw)
		if err != nil {
			return err
		}
		act = a
		return nil
	})
	return act, ok
}

// flatParser binds the flat-shape parser to a state's legal sets.
func flatParser(st *battle.BattleState) func(string) (battle.Action, error) {
	return func(raw string) (battle.Action, error) {
		return parse.Action(raw, st.AvailableMoves, st.AvailableSwitches)
	}
}

// decisionParser binds the nested-shape parser to a state's legal sets.
func decisionParser(st *battle.BattleState) func(string) (battle.Action, error) {
	return func(raw string) (battle.Action, error) {
		return parse.Decision(raw, st.AvailableMoves, st.AvailableSwitches)
	}
}

func nonEmpty(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return backend.ErrEmptyResponse
	}
	return nil
}

// #endregion
