package battle

// #region imports
import (
	"github.com/danielpatrickdp/battle-agent/internal/dex"
)

// #endregion imports

// #region status

// Status is a non-volatile status condition.
type Status string

const (
	StatusNone      Status = ""
	StatusBurn      Status = "brn"
	StatusFreeze    Status = "frz"
	StatusParalysis Status = "par"
	StatusPoison    Status = "psn"
	StatusToxic     Status = "tox"
	StatusSleep     Status = "slp"
	StatusFainted   Status = "fnt"
)

// Describe renders the status for prompts; StatusNone renders "".
func (s Status) Describe() string {
	switch s {
	case StatusBurn:
		return "burnt"
	case StatusFreeze:
		return "frozen"
	case StatusParalysis:
		return "paralyzed"
	case StatusPoison:
		return "poisoned"
	case StatusToxic:
		return "toxic"
	case StatusSleep:
		return "sleeping"
	case StatusFainted:
		return "fainted"
	default:
		return ""
	}
}

// #endregion status

// #region category

// Category is a move's damage class.
type Category string

const (
	CategoryPhysical Category = "physical"
	CategorySpecial  Category = "special"
	CategoryStatus   Category = "status"
)

// #endregion category

// #region stats

// StatBlock holds unmodified stats.
type StatBlock struct {
	Atk int `json:"atk"`
	Def int `json:"def"`
	SpA int `json:"spa"`
	SpD int `json:"spd"`
	Spe int `json:"spe"`
}

// Get returns a stat by name; accuracy and evasion are not part of the block.
func (s StatBlock) Get(stat dex.Stat) int {
	switch stat {
	case dex.StatAtk:
		return s.Atk
	case dex.StatDef:
		return s.Def
	case dex.StatSpA:
		return s.SpA
	case dex.StatSpD:
		return s.SpD
	case dex.StatSpe:
		return s.Spe
	default:
		return 0
	}
}

// BoostState holds stages in [-6, 6]. It is written by the simulator only.
type BoostState struct {
	Atk      int `json:"atk,omitempty"`
	Def      int `json:"def,omitempty"`
	SpA      int `json:"spa,omitempty"`
	SpD      int `json:"spd,omitempty"`
	Spe      int `json:"spe,omitempty"`
	Accuracy int `json:"accuracy,omitempty"`
	Evasion  int `json:"evasion,omitempty"`
}

// Get returns the clamped stage of a stat.
func (b BoostState) Get(stat dex.Stat) int {
	var v int
	switch stat {
	case dex.StatAtk:
		v = b.Atk
	case dex.StatDef:
		v = b.Def
	case dex.StatSpA:
		v = b.SpA
	case dex.StatSpD:
		v = b.SpD
	case dex.StatSpe:
		v = b.Spe
	case dex.StatAccuracy:
		v = b.Accuracy
	case dex.StatEvasion:
		v = b.Evasion
	}
	return dex.ClampStage(v)
}

// #endregion stats

// #region move

// Move is a move as the simulator reports it.
type Move struct {
	ID        string   `json:"id"`
	Type      dex.Type `json:"type"`
	Category  Category `json:"category"`
	BasePower int      `json:"base_power"`
	Accuracy  float64  `json:"accuracy"`
}

// IsAttack reports whether the move deals direct damage.
func (m Move) IsAttack() bool {
	return m.BasePower > 0
}

// #endregion move

// #region pokemon

// Pokemon is a read snapshot of one team member.
type Pokemon struct {
	Species    string     `json:"species"`
	Typing     dex.Typing `json:"types"`
	Stats      StatBlock  `json:"stats"`
	Boosts     BoostState `json:"boosts"`
	HPFraction float64    `json:"hp_fraction"`
	Fainted    bool       `json:"fainted,omitempty"`
	Status     Status     `json:"status,omitempty"`
	Moves      []Move     `json:"moves,omitempty"`
	Ability    string     `json:"ability,omitempty"`
	Item       string     `json:"item,omitempty"`
}

// EffectiveStat applies the pokemon's own boost to one of its stats.
func (p *Pokemon) EffectiveStat(stat dex.Stat) float64 {
	return dex.EffectiveStat(stat, float64(p.Stats.Get(stat)), p.Boosts.Get(stat))
}

// HPPercent is the rounded remaining HP percentage.
func (p *Pokemon) HPPercent() int {
	return roundInt(p.HPFraction * 100)
}

// #endregion pokemon
