package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/logging"
	"github.com/danielpatrickdp/battle-agent/internal/prompt"
)

// #endregion

// ProtocolBypass labels traces for turns resolved without a backend call.
const ProtocolBypass ProtocolID = "bypass"

// #region options

// Options configures an Agent. Zero values are usable: io protocol,
// temperature 0, no per-call timeout, no trace sink, no memory.
type Options struct {
	Protocol    ProtocolID
	Temperature float64
	Timeout     time.Duration // per backend call, 0 = none
	Rand        *rand.Rand    // fallback switch choice; nil seeds from the clock
	Sink        logging.Sink
	Memory      *OutcomeMemory
}

// #endregion

// #region session

// Session carries per-battle state between turns.
type Session struct {
	BattleTag string
	Last      battle.Action // previous turn's action, zero on the first turn
}

// NewSession starts a battle with no previous action.
func NewSession(tag string) *Session {
	return &Session{BattleTag: tag}
}

// #endregion

// #region agent

// Agent turns battle snapshots into actions. Decide may be called from
// several goroutines as long as each Session is used by one at a time.
type Agent struct {
	gen      backend.Generator
	enc      *prompt.Encoder
	selector *ProtocolSelector
	opts     Options

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewAgent wires a backend and encoder. enc may be nil for the default
// chart without reference enrichment.
func NewAgent(gen backend.Generator, enc *prompt.Encoder, opts Options) *Agent {
	if enc == nil {
		enc = prompt.NewEncoder(nil, nil)
	}
	if opts.Protocol == "" {
		opts.Protocol = ProtocolIO
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{
		gen:      gen,
		enc:      enc,
		selector: NewProtocolSelector(opts.Memory),
		opts:     opts,
		rng:      rng,
	}
}

// #endregion

// #region decide

// Decide chooses one legal action for st. Backend and parse failures never
// surface: after the protocol's attempts are spent the fallback policy
// decides, and so does a state the encoder rejects. The only error is a
// state with no legal action.
func (a *Agent) Decide(ctx context.Context, sess *Session, st *battle.BattleState) (Decision, error) {
	if !st.HasLegalAction() {
		return Decision{}, ErrNoLegalAction
	}
	if sess == nil {
		sess = NewSession(st.Tag)
	}
	if sess.BattleTag == "" {
		sess.BattleTag = st.Tag
	}
	tag := fmt.Sprintf("%s/t%d", sess.BattleTag, st.Turn)

	if st.NeedsReplacement() && len(st.AvailableSwitches) == 1 {
		d := Decision{
			Action:   battle.SwitchAction(st.AvailableSwitches[0]),
			Protocol: ProtocolBypass,
			Bypassed: true,
		}
		log.Printf("[ORCH] %s only one replacement, %s", tag, d.Action)
		a.finish(sess, st, &turn{tag: tag}, &d, false)
		return d, nil
	}

	cfg := a.selector.Select(a.opts.Protocol)
	t := &turn{
		gen:         a.gen,
		temperature: a.opts.Temperature,
		timeout:     a.opts.Timeout,
		tag:         tag,
	}
	d := Decision{Protocol: cfg.ID}

	p, encErr := a.enc.Encode(st, sess.Last)
	if encErr != nil {
		// no prompt to send; the turn still gets a legal action
		t.errors++
		log.Printf("[ORCH] %s encode failed: %v", tag, encErr)
	} else {
		t.system = p.System
		if act, ok := t.run(ctx, cfg, p, st); ok {
			d.Action = act
		}
	}

	if d.Action.IsZero() {
		act, err := a.fallback(st)
		if err != nil {
			return Decision{}, err
		}
		d.Action = act
		d.Fallback = true
		log.Printf("[ORCH] %s %s exhausted after %d calls, fallback %s", tag, cfg.ID, t.calls, act)
	}
	d.Calls = t.calls
	d.Errors = t.errors

	a.finish(sess, st, t, &d, encErr == nil)
	log.Printf("[ORCH] %s %s -> %s (calls=%d errors=%d fallback=%v)",
		tag, d.Protocol, d.Action, d.Calls, d.Errors, d.Fallback)
	return d, nil
}

func (a *Agent) fallback(st *battle.BattleState) (battle.Action, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Fallback(st, a.rng)
}

// #endregion

// #region finish

// finish writes the trace for d, records its outcome when learn is set, and
// advances the session. Persistence failures are logged, never returned.
func (a *Agent) finish(sess *Session, st *battle.BattleState, t *turn, d *Decision, learn bool) {
	d.TraceID = uuid.New().String()
	now := time.Now().UTC()

	if a.opts.Sink != nil {
		tr := logging.DecisionTrace{
			ID:           d.TraceID,
			BattleTag:    sess.BattleTag,
			Turn:         st.Turn,
			Protocol:     string(d.Protocol),
			SystemPrompt: t.system,
			UserPrompts:  t.prompts,
			Outputs:      t.outputs,
			Action:       d.Action,
			Fallback:     d.Fallback,
			Errors:       d.Errors,
			CreatedAt:    now,
		}
		if err := a.opts.Sink.Record(tr); err != nil {
			log.Printf("[TRACE] %s: record failed: %v", t.tag, err)
		}
	}

	if a.opts.Memory != nil && learn {
		rec := OutcomeRecord{
			TraceID:   d.TraceID,
			BattleTag: sess.BattleTag,
			Turn:      st.Turn,
			Protocol:  d.Protocol,
			Calls:     d.Calls,
			Errors:    d.Errors,
			Fallback:  d.Fallback,
			CreatedAt: now,
		}
		if err := a.opts.Memory.RecordOutcome(rec); err != nil {
			log.Printf("[ORCH] %s: outcome record failed: %v", t.tag, err)
		}
	}

	sess.Last = d.Action
}

// #endregion
