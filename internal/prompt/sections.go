package prompt

// #region imports
import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/dex"
)

// #endregion imports

// Every formatter in this file returns "" when its source data is absent.

// #region history

// HistoryTurns is how many trailing history blocks are kept: five previous
// exchanges plus the current one.
const HistoryTurns = 6

// History renders the trailing turn log with speaker labels rewritten from
// the agent's point of view.
func History(history []string, player string) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	relabel := strings.NewReplacer("p1a: ", "", "p2a:", "opposing", "Player1", "You", "Player2", "Opponent")
	if player == "p2" {
		relabel = strings.NewReplacer("p2a: ", "", "p1a:", "opposing", "Player2", "You", "Player1", "Opponent")
	}
	return "Historical turns:\n" + relabel.Replace(strings.Join(history, "\n"))
}

// #endregion history

// #region stats

var statLabels = []struct {
	stat  dex.Stat
	label string
}{
	{dex.StatAtk, "Attack"},
	{dex.StatDef, "Defense"},
	{dex.StatSpA, "Special attack"},
	{dex.StatSpD, "Special defense"},
	{dex.StatSpe, "Speed"},
}

// boostedStats renders every stat, applying and annotating non-zero stages.
func boostedStats(p *battle.Pokemon) string {
	parts := make([]string, 0, len(statLabels))
	for _, s := range statLabels {
		stage := p.Boosts.Get(s.stat)
		if stage == 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", s.label, p.Stats.Get(s.stat)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d(%d stage boosted)", s.label, roundStat(p.EffectiveStat(s.stat)), stage))
	}
	return strings.Join(parts, ",")
}

// rawStats renders unboosted stats; bench pokemon carry no stages.
func rawStats(p *battle.Pokemon) string {
	parts := make([]string, 0, len(statLabels))
	for _, s := range statLabels {
		parts = append(parts, fmt.Sprintf("%s:%d", s.label, p.Stats.Get(s.stat)))
	}
	return strings.Join(parts, ",")
}

func roundStat(v float64) int {
	return int(v + 0.5)
}

func speedNote(speed float64, opp *battle.Pokemon) string {
	if opp == nil {
		return ""
	}
	if speed < opp.EffectiveStat(dex.StatSpe) {
		return fmt.Sprintf("(slower than %s).", opp.Species)
	}
	return fmt.Sprintf("(faster than %s).", opp.Species)
}

// relativePower estimates a move's damage from attacker onto defender.
func relativePower(m battle.Move, attacker, defender *battle.Pokemon) int {
	if attacker == nil || defender == nil {
		return 0
	}
	switch m.Category {
	case battle.CategorySpecial:
		return dex.RelativePower(attacker.EffectiveStat(dex.StatSpA), defender.EffectiveStat(dex.StatSpD), m.BasePower)
	case battle.CategoryPhysical:
		return dex.RelativePower(attacker.EffectiveStat(dex.StatAtk), defender.EffectiveStat(dex.StatDef), m.BasePower)
	default:
		return 0
	}
}

// #endregion stats

// #region type-sets

// teamAttackTypes collects the attacking move types the agent's side can
// bring: the active pokemon's legal moves and the bench's known moves.
func teamAttackTypes(st *battle.BattleState) []dex.Type {
	var out []dex.Type
	for _, m := range st.AvailableMoves {
		if m.IsAttack() {
			out = append(out, m.Type)
		}
	}
	for _, p := range st.Switches() {
		for _, m := range p.Moves {
			if m.IsAttack() {
				out = append(out, m.Type)
			}
		}
	}
	return out
}

// threatTypes collects the types the opposing active pokemon can attack
// with: its own typing, revealed moves and likely moves.
func (e *Encoder) threatTypes(opp *battle.Pokemon) []dex.Type {
	if opp == nil {
		return nil
	}
	out := append([]dex.Type(nil), opp.Typing.Types()...)
	for _, m := range opp.Moves {
		if m.IsAttack() {
			out = append(out, m.Type)
		}
	}
	for _, m := range e.ref.PossibleMoves(opp.Species) {
		if m.Power > 0 && m.Type != "" {
			out = append(out, m.Type)
		}
	}
	return out
}

// #endregion type-sets

// #region opponent

func (e *Encoder) opponentAbility(opp *battle.Pokemon) string {
	id := opp.Ability
	if id == "" {
		only, ok := e.ref.OnlyAbility(opp.Species)
		if !ok {
			return ""
		}
		id = only
	}
	if d, ok := e.ref.Ability(id); ok {
		return fmt.Sprintf("%s(%s)", d.Name, d.Effect)
	}
	return id
}

// Opponent summarizes the opposing side: remaining count, the active
// pokemon's block, its weaknesses to the agent's move types, its revealed
// and likely attacks, and its side conditions.
func (e *Encoder) Opponent(st *battle.BattleState) string {
	opp := st.OpponentActivePokemon()
	if opp == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Opponent has %d pokemons left.\n", st.OpponentRemaining())
	fmt.Fprintf(&b, "Opposing pokemon:%s,Type:%s,HP:%d%%,", opp.Species, opp.Typing, opp.HPPercent())
	if s := opp.Status.Describe(); s != "" {
		fmt.Fprintf(&b, "Status:%s,", s)
	}
	b.WriteString(boostedStats(opp))
	b.WriteString(",")
	if ab := e.opponentAbility(opp); ab != "" {
		fmt.Fprintf(&b, "Ability:%s", ab)
	}
	b.WriteString(e.chart.Resolve(opp.Typing, teamAttackTypes(st)).Describe(opp.Species))
	b.WriteString("\n")

	var used strings.Builder
	for _, m := range opp.Moves {
		if !m.IsAttack() {
			continue
		}
		fmt.Fprintf(&used, "[%s,%s,Power:%d],", m.ID, m.Type.Title(), relativePower(m, opp, st.ActivePokemon()))
	}
	if used.Len() > 0 {
		fmt.Fprintf(&b, "%s used moves:%s", opp.Species, used.String())
	}

	var possible strings.Builder
	for _, m := range e.ref.PossibleMoves(opp.Species) {
		if m.Power <= 0 {
			continue
		}
		fmt.Fprintf(&possible, "[%s,%s,Power:%d],", m.Name, m.Type.Lower(), m.Power)
	}
	if possible.Len() > 0 {
		fmt.Fprintf(&b, "%s's all the possible attacks:%s", opp.Species, possible.String())
	}

	if conds := st.OpponentSideConditions.Sorted(); len(conds) > 0 {
		names := make([]string, len(conds))
		for i, c := range conds {
			names[i] = c.Name()
		}
		b.WriteString("Opponent team's side condition: " + strings.Join(names, ","))
	}
	b.WriteString("\n")
	return b.String()
}

// #endregion opponent

// #region active

func (e *Encoder) describedAbility(id string) string {
	if id == "" {
		return ""
	}
	if d, ok := e.ref.Ability(id); ok {
		if d.Effect != "" {
			return fmt.Sprintf("%s(%s)", d.Name, d.Effect)
		}
		return d.Name
	}
	return id
}

func (e *Encoder) describedItem(id string) string {
	if id == "" {
		return ""
	}
	if d, ok := e.ref.Item(id); ok {
		return fmt.Sprintf("%s(%s)", d.Name, d.Effect)
	}
	return id
}

// Active describes the agent's active pokemon and how the opposing
// pokemon's likely attack types land on it.
func (e *Encoder) Active(st *battle.BattleState) string {
	a := st.ActivePokemon()
	if a == nil {
		return ""
	}
	opp := st.OpponentActivePokemon()
	var b strings.Builder
	fmt.Fprintf(&b, "Your current pokemon:%s,Type:%s,HP:%d%%,", a.Species, a.Typing, a.HPPercent())
	if s := a.Status.Describe(); s != "" {
		fmt.Fprintf(&b, "Status:%s,", s)
	}
	b.WriteString(boostedStats(a))
	b.WriteString(speedNote(a.EffectiveStat(dex.StatSpe), opp))
	if ab := e.describedAbility(a.Ability); ab != "" {
		fmt.Fprintf(&b, "Ability:%s,", ab)
	}
	if it := e.describedItem(a.Item); it != "" {
		fmt.Fprintf(&b, "Item:%s", it)
	}
	b.WriteString(e.chart.Resolve(a.Typing, e.threatTypes(opp)).Describe(a.Species))
	b.WriteString("\n")
	return b.String()
}

// #endregion active

// #region side-conditions

// SideConditions lists the hazards and screens on the agent's side with
// their switch-in consequences.
func SideConditions(conds battle.SideConditions) string {
	sorted := conds.Sorted()
	if len(sorted) == 0 {
		return ""
	}
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = c.Name()
		if effect := c.SwitchInEffect(); effect != "" {
			parts[i] += " (" + effect + ")"
		}
	}
	return "Your team's side condition: " + strings.Join(parts, ",") + "\n"
}

// #endregion side-conditions

// #region moves

// Moves breaks down every legal move: estimated power against the opposing
// pokemon, boosted accuracy, effect text and type effectiveness.
func (e *Encoder) Moves(st *battle.BattleState) string {
	a := st.ActivePokemon()
	if a == nil || len(st.AvailableMoves) == 0 {
		return ""
	}
	opp := st.OpponentActivePokemon()
	accuracy := dex.BoostMultiplier(dex.StatAccuracy, a.Boosts.Get(dex.StatAccuracy))

	var b strings.Builder
	fmt.Fprintf(&b, "Your %s has %d moves:\n", a.Species, len(st.AvailableMoves))
	for _, m := range st.AvailableMoves {
		fmt.Fprintf(&b, "Move:%s,Type:%s,", m.ID, m.Type.Title())
		if m.Category == battle.CategoryStatus {
			fmt.Fprintf(&b, "%s-move,", titleWord(string(m.Category)))
		}
		acc := m.Accuracy
		if acc <= 0 {
			acc = 1
		}
		fmt.Fprintf(&b, "Power:%d,Acc:%d%%", relativePower(m, a, opp), roundStat(acc*accuracy*100))
		if effect := e.ref.MoveEffect(m.ID); effect != "" {
			fmt.Fprintf(&b, ",Effect:%s", effect)
		}
		if opp != nil && m.IsAttack() {
			if cat := e.chart.Category(m.Type, opp.Typing); cat != dex.Neutral {
				fmt.Fprintf(&b, "(%s to %s)", cat.Phrase(), opp.Species)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// #endregion moves

// #region switches

// Switches describes each legal switch target: stats, speed order against
// the opposing pokemon, what its known attacks do to it, and how the
// opposing pokemon's likely attack types land on it.
func (e *Encoder) Switches(st *battle.BattleState) string {
	bench := st.Switches()
	if len(bench) == 0 {
		return ""
	}
	opp := st.OpponentActivePokemon()
	threats := e.threatTypes(opp)

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d pokemons:\n", len(bench))
	for _, p := range bench {
		fmt.Fprintf(&b, "Pokemon:%s,Type:%s,HP:%d%%,", p.Species, p.Typing, p.HPPercent())
		if s := p.Status.Describe(); s != "" {
			fmt.Fprintf(&b, "Status:%s, ", s)
		}
		b.WriteString(rawStats(p))
		b.WriteString(speedNote(float64(p.Stats.Spe), opp))
		var moves strings.Builder
		for _, m := range p.Moves {
			if !m.IsAttack() {
				continue
			}
			factor := "1"
			if opp != nil {
				factor = e.chart.Category(m.Type, opp.Typing).Factor()
			}
			fmt.Fprintf(&moves, "[%s,%s,%sx damage],", m.ID, m.Type.Title(), factor)
		}
		if moves.Len() > 0 {
			b.WriteString(" Moves:")
			b.WriteString(moves.String())
		}
		b.WriteString(e.chart.Resolve(p.Typing, threats).Describe(p.Species))
		b.WriteString("\n")
	}
	return b.String()
}

// #endregion switches
