package battle

// #region imports
import (
	"math"
	"sort"
	"strings"
)

// #endregion imports

// #region side-conditions

// SideCondition is a field effect on one side. Only presence is modelled.
type SideCondition string

const (
	Spikes      SideCondition = "spikes"
	StealthRock SideCondition = "stealth_rock"
	StickyWeb   SideCondition = "sticky_web"
	ToxicSpikes SideCondition = "toxic_spikes"
	Reflect     SideCondition = "reflect"
	LightScreen SideCondition = "light_screen"
	AuroraVeil  SideCondition = "aurora_veil"
	Tailwind    SideCondition = "tailwind"
)

// Name renders the condition as words, e.g. "stealth rock".
func (c SideCondition) Name() string {
	return strings.Join(strings.Split(strings.ToLower(string(c)), "_"), " ")
}

// SwitchInEffect describes entry-hazard consequences for the side it is on.
func (c SideCondition) SwitchInEffect() string {
	switch c {
	case Spikes:
		return "cause damage to your pokémon when switch in except flying type"
	case StealthRock:
		return "cause rock-type damage to your pokémon when switch in"
	case StickyWeb:
		return "reduce the speed stat of your pokémon when switch in"
	case ToxicSpikes:
		return "cause your pokémon toxic when switch in"
	default:
		return ""
	}
}

// SideConditions is a presence set.
type SideConditions map[SideCondition]bool

// Sorted returns the present conditions in lexical order.
func (s SideConditions) Sorted() []SideCondition {
	out := make([]SideCondition, 0, len(s))
	for c, on := range s {
		if on {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// #endregion side-conditions

// #region battle-state

// TeamSize is the roster size assumed for remaining-count summaries.
const TeamSize = 6

// BattleState is the per-turn snapshot handed over by the simulator.
// Team maps are keyed by species.
type BattleState struct {
	Tag                    string              `json:"battle_tag"`
	Turn                   int                 `json:"turn"`
	Player                 string              `json:"player"`
	Team                   map[string]*Pokemon `json:"team"`
	OpponentTeam           map[string]*Pokemon `json:"opponent_team"`
	Active                 string              `json:"active"`
	OpponentActive         string              `json:"opponent_active"`
	SideConditions         SideConditions      `json:"side_conditions,omitempty"`
	OpponentSideConditions SideConditions      `json:"opponent_side_conditions,omitempty"`
	History                []string            `json:"history,omitempty"`
	AvailableMoves         []Move              `json:"available_moves"`
	AvailableSwitches      []string            `json:"available_switches"`
	ForceSwitch            bool                `json:"force_switch,omitempty"`
}

// ActivePokemon returns the agent's active pokemon, or nil.
func (s *BattleState) ActivePokemon() *Pokemon {
	return s.Team[s.Active]
}

// OpponentActivePokemon returns the opponent's active pokemon, or nil.
func (s *BattleState) OpponentActivePokemon() *Pokemon {
	return s.OpponentTeam[s.OpponentActive]
}

// Switches resolves the legal switch targets to team members, skipping
// species missing from the roster.
func (s *BattleState) Switches() []*Pokemon {
	out := make([]*Pokemon, 0, len(s.AvailableSwitches))
	for _, species := range s.AvailableSwitches {
		if p, ok := s.Team[species]; ok {
			out = append(out, p)
		}
	}
	return out
}

// NeedsReplacement reports a forced switch: the active pokemon fainted
// (or the simulator flagged it) and a replacement exists.
func (s *BattleState) NeedsReplacement() bool {
	if len(s.AvailableSwitches) == 0 {
		return false
	}
	if s.ForceSwitch {
		return true
	}
	active := s.ActivePokemon()
	return active != nil && active.Fainted
}

// HasLegalAction reports whether at least one move or switch is allowed.
func (s *BattleState) HasLegalAction() bool {
	return len(s.AvailableMoves) > 0 || len(s.AvailableSwitches) > 0
}

// OpponentRemaining counts opponent pokemon not known to have fainted.
func (s *BattleState) OpponentRemaining() int {
	fainted := 0
	for _, p := range s.OpponentTeam {
		if p.Fainted {
			fainted++
		}
	}
	return TeamSize - fainted
}

// #endregion battle-state

func roundInt(f float64) int {
	return int(math.Round(f))
}
