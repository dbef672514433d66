package dex

import "math"

// #region stat-names

// Stat names a boostable stat.
type Stat string

const (
	StatAtk      Stat = "atk"
	StatDef      Stat = "def"
	StatSpA      Stat = "spa"
	StatSpD      Stat = "spd"
	StatSpe      Stat = "spe"
	StatAccuracy Stat = "accuracy"
	StatEvasion  Stat = "evasion"
)

// #endregion stat-names

// #region tables

const (
	MinStage = -6
	MaxStage = 6
)

// Indexed by stage+6.
var (
	accuracyStageTable = [13]float64{0.33, 0.36, 0.43, 0.5, 0.6, 0.75, 1.0, 1.33, 1.66, 2.0, 2.5, 2.66, 3.0}
	statStageTable     = [13]float64{0.25, 0.29, 0.33, 0.4, 0.5, 0.67, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0}
)

// ClampStage bounds a stage to [-6, 6].
func ClampStage(stage int) int {
	if stage < MinStage {
		return MinStage
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// BoostMultiplier looks up the factor for a stat at a stage.
// Accuracy and evasion use their own table.
func BoostMultiplier(stat Stat, stage int) float64 {
	idx := ClampStage(stage) - MinStage
	if stat == StatAccuracy || stat == StatEvasion {
		return accuracyStageTable[idx]
	}
	return statStageTable[idx]
}

// #endregion tables

// #region effective-stat

// EffectiveStat is base times the stage factor. Callers round for display.
func EffectiveStat(stat Stat, base float64, stage int) float64 {
	return base * BoostMultiplier(stat, stage)
}

// RelativePower approximates the damage of a move as attack / defense *
// base power, rounded. It ignores STAB, items, abilities and random rolls.
func RelativePower(attack, defense float64, basePower int) int {
	if defense <= 0 {
		return 0
	}
	return int(math.Round(attack / defense * float64(basePower)))
}

// #endregion effective-stat
