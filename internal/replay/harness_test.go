package replay

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/dex"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
)

func testOptions() orchestrator.Options {
	return orchestrator.Options{Rand: rand.New(rand.NewSource(7))}
}

// 1. Sample fixture: clean turn, fallback turn, bypass turn.
func TestRun_SampleFixture(t *testing.T) {
	f, err := LoadFixture("testdata/gen8_sample.json")
	if err != nil {
		t.Fatal(err)
	}

	results, sum, err := Run(context.Background(), f, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if r := results[0]; r.Fallback || r.Calls != 1 || !r.Match {
		t.Errorf("turn 1: %+v", r)
	}
	if r := results[1]; !r.Fallback || r.Calls != 2 || !r.Match {
		t.Errorf("turn 2 should fall back to fireblast: %+v", r)
	}
	if r := results[2]; !r.Bypassed || r.Calls != 0 || !r.Match {
		t.Errorf("turn 3 should bypass: %+v", r)
	}

	if sum.Turns != 3 || sum.Matches != 3 || sum.Fallbacks != 1 || sum.Bypasses != 1 || sum.Calls != 3 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if math.Abs(sum.BeatScore-0.6) > 1e-9 || math.Abs(sum.RemainScore-1.0) > 1e-9 {
		t.Errorf("scores: beat=%f remain=%f", sum.BeatScore, sum.RemainScore)
	}
	if sum.Won || sum.RunID == "" {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

// 2. Each turn reads only its own script; sc agreement leaves a spare reply.
func TestRun_PerTurnScripts(t *testing.T) {
	st := battle.BattleState{
		Tag:    "battle-x",
		Turn:   1,
		Player: "p1",
		Team: map[string]*battle.Pokemon{
			"Pikachu": {Species: "Pikachu", Typing: dex.MustTyping(dex.Electric), HPFraction: 1},
		},
		OpponentTeam: map[string]*battle.Pokemon{
			"Gyarados": {Species: "Gyarados", Typing: dex.MustTyping(dex.Water, dex.Flying), HPFraction: 1},
		},
		Active:         "Pikachu",
		OpponentActive: "Gyarados",
		AvailableMoves: []battle.Move{
			{ID: "thunderbolt", Type: dex.Electric, Category: battle.CategorySpecial, BasePower: 90, Accuracy: 1},
			{ID: "quickattack", Type: dex.Normal, Category: battle.CategoryPhysical, BasePower: 40, Accuracy: 1},
		},
	}
	second := st
	second.Turn = 2

	f := &Fixture{
		Protocol: "sc",
		Turns: []FixtureTurn{
			{State: st, Outputs: []FixtureOutput{
				{Text: `{"move":"thunderbolt"}`}, {Text: `{"move":"thunderbolt"}`}, {Text: `{"move":"quickattack"}`},
			}, Expected: "move thunderbolt"},
			{State: second, Outputs: []FixtureOutput{
				{Text: `{"move":"quickattack"}`}, {Text: `{"move":"quickattack"}`},
			}, Expected: "move thunderbolt"},
		},
	}

	results, sum, err := Run(context.Background(), f, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Unused != 1 || results[0].Protocol != orchestrator.ProtocolSC {
		t.Errorf("turn 1: %+v", results[0])
	}
	if !results[1].Action.Equal(battle.MoveAction("quickattack")) || results[1].Match {
		t.Errorf("turn 2 should read its own script: %+v", results[1])
	}
	if sum.Matches != 1 {
		t.Errorf("matches = %d", sum.Matches)
	}
}

// 3. Bad protocol name is rejected before any turn runs.
func TestRun_BadProtocol(t *testing.T) {
	if _, _, err := Run(context.Background(), &Fixture{Protocol: "beam"}, nil, testOptions()); err == nil {
		t.Error("expected error")
	}
}

// 4. A turn with no legal action aborts the run.
func TestRun_NoLegalAction(t *testing.T) {
	f := &Fixture{Turns: []FixtureTurn{{State: battle.BattleState{Tag: "b", Turn: 9}}}}
	results, _, err := Run(context.Background(), f, nil, testOptions())
	if err == nil || len(results) != 0 {
		t.Errorf("expected error and no results, got %v / %d", err, len(results))
	}
}

func TestScores(t *testing.T) {
	st := &battle.BattleState{
		Team: map[string]*battle.Pokemon{
			"A": {HPFraction: 0.5},
			"B": {HPFraction: 0.3, Fainted: true},
		},
		OpponentTeam: map[string]*battle.Pokemon{
			"X": {HPFraction: 0.25},
			"Y": {Fainted: true},
		},
	}
	beat, remain := Scores(st)
	if beat != 1.75 || remain != 0.5 {
		t.Errorf("beat=%f remain=%f", beat, remain)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture("testdata/absent.json"); err == nil {
		t.Error("expected error")
	}
}
