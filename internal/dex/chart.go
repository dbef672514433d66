package dex

// #region imports
import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// #endregion imports

//go:embed data/typechart.json
var defaultChartJSON []byte

// #region category

// Category classifies a damage multiplier.
type Category int

const (
	Neutral Category = iota
	Quadruple
	Double
	Half
	Quarter
	Immune
)

// CategoryOf maps a multiplier to its category. Anything outside the five
// listed multipliers is neutral.
func CategoryOf(mult float64) Category {
	switch mult {
	case 4:
		return Quadruple
	case 2:
		return Double
	case 0.5:
		return Half
	case 0.25:
		return Quarter
	case 0:
		return Immune
	default:
		return Neutral
	}
}

// Factor is the multiplier as prompt text ("2", "0.25").
func (c Category) Factor() string {
	switch c {
	case Quadruple:
		return "4"
	case Double:
		return "2"
	case Half:
		return "0.5"
	case Quarter:
		return "0.25"
	case Immune:
		return "0"
	default:
		return "1"
	}
}

// Phrase is the effectiveness wording used in prompts.
func (c Category) Phrase() string {
	switch c {
	case Quadruple:
		return "extremely-effective (4x damage)"
	case Double:
		return "super-effective (2x damage)"
	case Half:
		return "ineffective (0.5x damage)"
	case Quarter:
		return "highly ineffective (0.25x damage)"
	case Immune:
		return "zero effect (0x damage)"
	default:
		return ""
	}
}

// #endregion category

// #region chart

// Chart maps attacking type -> defending type -> multiplier. It is
// immutable once built and safe for concurrent readers.
type Chart struct {
	m map[Type]map[Type]float64
}

// ParseChart decodes a chart from JSON. Missing pairs are neutral.
func ParseChart(data []byte) (*Chart, error) {
	var raw map[Type]map[Type]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode type chart: %w", err)
	}
	m := make(map[Type]map[Type]float64, len(AllTypes))
	for _, atk := range AllTypes {
		row := make(map[Type]float64, len(AllTypes))
		for _, def := range AllTypes {
			row[def] = 1
		}
		for def, v := range raw[atk] {
			if CategoryOf(v) == Neutral && v != 1 {
				return nil, fmt.Errorf("type chart %s->%s: unsupported multiplier %v", atk, def, v)
			}
			row[def] = v
		}
		m[atk] = row
	}
	return &Chart{m: m}, nil
}

var (
	defaultChart     *Chart
	defaultChartOnce sync.Once
)

// DefaultChart returns the embedded generation 6+ chart.
func DefaultChart() *Chart {
	defaultChartOnce.Do(func() {
		c, err := ParseChart(defaultChartJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded type chart: %v", err))
		}
		defaultChart = c
	})
	return defaultChart
}

// Single returns the multiplier of one attacking type against one defending type.
func (c *Chart) Single(attack, defend Type) float64 {
	row, ok := c.m[attack]
	if !ok {
		return 1
	}
	if v, ok := row[defend]; ok {
		return v
	}
	return 1
}

// Multiplier is the product of the single-type multipliers over the
// defender's types. Unknown attacking types and zero typings are neutral.
func (c *Chart) Multiplier(attack Type, defender Typing) float64 {
	mult := 1.0
	for _, t := range defender.Types() {
		mult *= c.Single(attack, t)
	}
	return mult
}

// Category classifies attack against defender.
func (c *Chart) Category(attack Type, defender Typing) Category {
	if defender.IsZero() || attack == "" {
		return Neutral
	}
	return CategoryOf(c.Multiplier(attack, defender))
}

// #endregion chart

// #region resolve

// Effectiveness groups attacking types by how well they hit one defender.
// Every list holds capitalized names in canonical type order.
type Effectiveness struct {
	Quadruple []string
	Double    []string
	Half      []string
	Quarter   []string
	Immune    []string
}

// Empty reports whether no category holds a type.
func (e Effectiveness) Empty() bool {
	return len(e.Quadruple)+len(e.Double)+len(e.Half)+len(e.Quarter)+len(e.Immune) == 0
}

// Resolve categorizes every attacking type against defender. A non-empty
// constraint restricts the output to those attacking types.
func (c *Chart) Resolve(defender Typing, constraint []Type) Effectiveness {
	var out Effectiveness
	if defender.IsZero() {
		return out
	}
	var allowed map[Type]bool
	if len(constraint) > 0 {
		allowed = make(map[Type]bool, len(constraint))
		for _, t := range constraint {
			allowed[t] = true
		}
	}
	for _, atk := range AllTypes {
		if allowed != nil && !allowed[atk] {
			continue
		}
		name := atk.Title()
		switch c.Category(atk, defender) {
		case Quadruple:
			out.Quadruple = append(out.Quadruple, name)
		case Double:
			out.Double = append(out.Double, name)
		case Half:
			out.Half = append(out.Half, name)
		case Quarter:
			out.Quarter = append(out.Quarter, name)
		case Immune:
			out.Immune = append(out.Immune, name)
		}
	}
	return out
}

// Describe renders the effectiveness sentences for a defender, e.g.
// " Fire-type attack is super-effective (2x damage) to Scizor." Empty
// categories are skipped.
func (e Effectiveness) Describe(species string) string {
	var b strings.Builder
	groups := []struct {
		types []string
		cat   Category
	}{
		{e.Quadruple, Quadruple},
		{e.Double, Double},
		{e.Half, Half},
		{e.Quarter, Quarter},
		{e.Immune, Immune},
	}
	for _, g := range groups {
		if len(g.types) == 0 {
			continue
		}
		fmt.Fprintf(&b, " %s-type attack is %s to %s.", strings.Join(g.types, ", "), g.cat.Phrase(), species)
	}
	return b.String()
}

// #endregion resolve
