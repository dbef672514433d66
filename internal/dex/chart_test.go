package dex

import (
	"slices"
	"strings"
	"testing"
)

// #region multiplier-tests

func TestMultiplier_DualTypeIsProduct(t *testing.T) {
	chart := DefaultChart()
	for _, a := range AllTypes {
		for _, d1 := range AllTypes {
			for _, d2 := range AllTypes {
				if d1 == d2 {
					continue
				}
				defender := MustTyping(d1, d2)
				got := chart.Multiplier(a, defender)
				want := chart.Single(a, d1) * chart.Single(a, d2)
				if got != want {
					t.Fatalf("%s vs %s: got %v, want %v", a, defender, got, want)
				}
			}
		}
	}
}

func TestMultiplier_KnownMatchups(t *testing.T) {
	chart := DefaultChart()
	tests := []struct {
		name     string
		attack   Type
		defender Typing
		want     float64
	}{
		{"ice-vs-garchomp", Ice, MustTyping(Dragon, Ground), 4},
		{"fire-vs-scizor", Fire, MustTyping(Bug, Steel), 4},
		{"electric-vs-ground", Electric, MustTyping(Ground), 0},
		{"grass-vs-heatran", Grass, MustTyping(Fire, Steel), 0.25},
		{"water-vs-ferrothorn", Water, MustTyping(Grass, Steel), 0.5},
		{"normal-vs-normal", Normal, MustTyping(Normal), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chart.Multiplier(tt.attack, tt.defender); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// #endregion multiplier-tests

// #region resolve-tests

func TestResolve_CategoriesAreDisjoint(t *testing.T) {
	chart := DefaultChart()
	for _, d1 := range AllTypes {
		for _, d2 := range append([]Type{""}, AllTypes...) {
			if d1 == d2 {
				continue
			}
			defender := MustTyping(d1, d2)
			eff := chart.Resolve(defender, nil)
			seen := map[string]int{}
			for _, list := range [][]string{eff.Quadruple, eff.Double, eff.Half, eff.Quarter, eff.Immune} {
				for _, name := range list {
					seen[name]++
				}
			}
			for _, a := range AllTypes {
				n := seen[a.Title()]
				neutral := chart.Category(a, defender) == Neutral
				if neutral && n != 0 {
					t.Errorf("%s vs %s: neutral type listed", a, defender)
				}
				if !neutral && n != 1 {
					t.Errorf("%s vs %s: listed %d times", a, defender, n)
				}
			}
		}
	}
}

func TestResolve_Scizor(t *testing.T) {
	eff := DefaultChart().Resolve(MustTyping(Bug, Steel), nil)
	if !slices.Equal(eff.Quadruple, []string{"Fire"}) {
		t.Errorf("quadruple: got %v", eff.Quadruple)
	}
	if len(eff.Double) != 0 {
		t.Errorf("double: got %v", eff.Double)
	}
	if !slices.Equal(eff.Immune, []string{"Poison"}) {
		t.Errorf("immune: got %v", eff.Immune)
	}
	if !slices.Contains(eff.Quarter, "Grass") {
		t.Errorf("quarter should contain Grass: %v", eff.Quarter)
	}
}

func TestResolve_Constraint(t *testing.T) {
	eff := DefaultChart().Resolve(MustTyping(Dragon, Ground), []Type{Ice, Water, Ice, Electric})
	if !slices.Equal(eff.Quadruple, []string{"Ice"}) {
		t.Errorf("quadruple: got %v", eff.Quadruple)
	}
	if !slices.Equal(eff.Immune, []string{"Electric"}) {
		t.Errorf("immune: got %v", eff.Immune)
	}
	if len(eff.Double)+len(eff.Half)+len(eff.Quarter) != 0 {
		t.Errorf("water is neutral, other categories should be empty: %+v", eff)
	}
}

func TestResolve_ZeroTyping(t *testing.T) {
	eff := DefaultChart().Resolve(Typing{}, nil)
	if !eff.Empty() {
		t.Errorf("expected empty effectiveness, got %+v", eff)
	}
	if eff.Describe("Missingno") != "" {
		t.Error("expected empty description")
	}
}

func TestDescribe(t *testing.T) {
	eff := DefaultChart().Resolve(MustTyping(Dragon, Ground), []Type{Ice, Electric})
	got := eff.Describe("Garchomp")
	want := " Ice-type attack is extremely-effective (4x damage) to Garchomp. Electric-type attack is zero effect (0x damage) to Garchomp."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if strings.Contains(got, "ICE") {
		t.Error("type names must be capitalized")
	}
}

// #endregion resolve-tests

// #region parse-chart-tests

func TestParseChart_RejectsUnsupportedMultiplier(t *testing.T) {
	_, err := ParseChart([]byte(`{"FIRE": {"WATER": 3}}`))
	if err == nil {
		t.Fatal("expected error for multiplier 3")
	}
}

func TestParseChart_FillsNeutral(t *testing.T) {
	chart, err := ParseChart([]byte(`{"fire": {"grass": 2}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chart.Single(Fire, Grass) != 2 {
		t.Error("expected fire->grass = 2")
	}
	if chart.Single(Water, Fire) != 1 {
		t.Error("expected missing pair to be neutral")
	}
}

// #endregion parse-chart-tests
