package prompt

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/battle-agent/internal/battle"
	"github.com/danielpatrickdp/battle-agent/internal/dex"
)

func testState() *battle.BattleState {
	return &battle.BattleState{
		Tag:    "battle-gen8ou-1",
		Turn:   4,
		Player: "p1",
		Team: map[string]*battle.Pokemon{
			"Mewtwo": {
				Species:    "Mewtwo",
				Typing:     dex.MustTyping(dex.Psychic),
				Stats:      battle.StatBlock{Atk: 200, Def: 180, SpA: 200, SpD: 180, Spe: 260},
				Boosts:     battle.BoostState{Accuracy: 1},
				HPFraction: 0.5,
			},
			"Garchomp": {
				Species:    "Garchomp",
				Typing:     dex.MustTyping(dex.Dragon, dex.Ground),
				Stats:      battle.StatBlock{Atk: 280, Def: 210, SpA: 170, SpD: 180, Spe: 200},
				HPFraction: 1,
				Status:     battle.StatusBurn,
				Moves: []battle.Move{
					{ID: "earthquake", Type: dex.Ground, Category: battle.CategoryPhysical, BasePower: 100, Accuracy: 1},
					{ID: "swordsdance", Type: dex.Normal, Category: battle.CategoryStatus},
				},
			},
		},
		OpponentTeam: map[string]*battle.Pokemon{
			"Scizor": {
				Species:    "Scizor",
				Typing:     dex.MustTyping(dex.Bug, dex.Steel),
				Stats:      battle.StatBlock{Atk: 260, Def: 200, SpA: 110, SpD: 100, Spe: 130},
				HPFraction: 1,
				Moves: []battle.Move{
					{ID: "bulletpunch", Type: dex.Steel, Category: battle.CategoryPhysical, BasePower: 40, Accuracy: 1},
				},
			},
			"Blissey": {Species: "Blissey", Fainted: true},
		},
		Active:         "Mewtwo",
		OpponentActive: "Scizor",
		SideConditions: battle.SideConditions{battle.StealthRock: true, battle.Reflect: true},
		AvailableMoves: []battle.Move{
			{ID: "psychic", Type: dex.Psychic, Category: battle.CategorySpecial, BasePower: 90, Accuracy: 1},
			{ID: "fireblast", Type: dex.Fire, Category: battle.CategorySpecial, BasePower: 110, Accuracy: 0.85},
			{ID: "calmmind", Type: dex.Psychic, Category: battle.CategoryStatus, Accuracy: 1},
		},
		AvailableSwitches: []string{"Garchomp"},
	}
}

func TestEncode_Idempotent(t *testing.T) {
	enc := NewEncoder(nil, nil)
	st := testState()
	last := battle.SwitchAction("Mewtwo")
	a, err := enc.Encode(st, last)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, err := enc.Encode(st, last)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Fatalf("encoding differs on run %d", i)
		}
	}
}

func TestEncode_NormalTurn(t *testing.T) {
	enc := NewEncoder(nil, nil)
	p, err := enc.Encode(testState(), battle.MoveAction("psychic"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Replacement {
		t.Error("healthy active should not take the replacement branch")
	}
	if !strings.Contains(p.System, "here was your last move:\nmove psychic\n") {
		t.Error("system prompt should embed the last action")
	}

	wants := []string{
		"Current battle state:\n",
		"Opponent has 5 pokemons left.\n",
		"Opposing pokemon:Scizor,Type:Bug and Steel,HP:100%,",
		" Fire-type attack is extremely-effective (4x damage) to Scizor.",
		" Psychic-type attack is ineffective (0.5x damage) to Scizor.",
		"Scizor used moves:[bulletpunch,Steel,Power:58],",
		"Your current pokemon:Mewtwo,Type:Psychic,HP:50%,",
		"Speed:260(faster than Scizor).",
		"Your team's side condition: reflect,stealth rock (cause rock-type damage to your pokémon when switch in)\n",
		"Your Mewtwo has 3 moves:\n",
		"Move:psychic,Type:Psychic,Power:180,Acc:133%(ineffective (0.5x damage) to Scizor)\n",
		"Move:fireblast,Type:Fire,Power:220,Acc:113%(extremely-effective (4x damage) to Scizor)\n",
		"Move:calmmind,Type:Psychic,Status-move,Power:0,Acc:133%\n",
		"You have 1 pokemons:\n",
		"Pokemon:Garchomp,Type:Dragon and Ground,HP:100%,Status:burnt, Attack:280,",
		"(faster than Scizor). Moves:[earthquake,Ground,1x damage],",
	}
	for _, w := range wants {
		if !strings.Contains(p.State, w) {
			t.Errorf("state prompt missing %q\n---\n%s", w, p.State)
		}
	}
	if strings.Contains(p.State, "Ability:") {
		t.Error("unknown abilities should be omitted")
	}
	if strings.Contains(p.State, "Historical turns") {
		t.Error("empty history should be omitted")
	}
}

func TestEncode_ReplacementBranch(t *testing.T) {
	st := testState()
	st.Team["Mewtwo"].Fainted = true
	st.Team["Mewtwo"].HPFraction = 0

	p, err := NewEncoder(nil, nil).Encode(st, battle.Action{})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Replacement {
		t.Fatal("fainted active with a bench should take the replacement branch")
	}
	if !strings.Contains(p.System, "Your Mewtwo just fainted.") {
		t.Errorf("system: %q", p.System)
	}
	if strings.Contains(p.State, "Your current pokemon") || strings.Contains(p.State, "moves:\n") {
		t.Error("replacement prompt should not describe the fainted pokemon's moves")
	}
	if !strings.Contains(p.State, "You have 1 pokemons:\n") {
		t.Error("replacement prompt should list switches")
	}
	user := p.User(ConstraintDirect, "")
	if !strings.Contains(user, `{"switch":"<switch_pokemon_name>"}`) {
		t.Error("replacement prompt should ask for a switch only")
	}
}

func TestEncode_NoActive(t *testing.T) {
	st := testState()
	st.Active = "Missing"
	if _, err := NewEncoder(nil, nil).Encode(st, battle.Action{}); err != ErrNoActive {
		t.Errorf("got %v, want ErrNoActive", err)
	}
}

func TestEncode_Enrichment(t *testing.T) {
	ref := dex.EmptyReference().
		WithMoveEffect("fireblast", "May burn the target.").
		WithAbility("technician", dex.Described{Name: "Technician", Effect: "Boosts weak moves."}).
		WithSpeciesAbilities("Scizor", "technician").
		WithItem("leftovers", dex.Described{Name: "Leftovers", Effect: "Restores HP each turn."}).
		WithSpeciesMoves("Scizor",
			dex.PossibleMove{ID: "knockoff", Name: "knockoff", Type: dex.Dark, Power: 65, Usage: 0.4},
			dex.PossibleMove{ID: "bulletpunch", Name: "bulletpunch", Type: dex.Steel, Power: 40, Usage: 0.9},
			dex.PossibleMove{ID: "roost", Name: "roost", Type: dex.Flying, Power: 0, Usage: 0.7},
		)
	st := testState()
	st.Team["Mewtwo"].Item = "leftovers"

	p, err := NewEncoder(nil, ref).Encode(st, battle.Action{})
	if err != nil {
		t.Fatal(err)
	}
	wants := []string{
		"Ability:Technician(Boosts weak moves.)",
		"Scizor's all the possible attacks:[bulletpunch,steel,Power:40],[knockoff,dark,Power:65],",
		"Item:Leftovers(Restores HP each turn.)",
		",Effect:May burn the target.(extremely-effective",
		// Dark from the likely moves reaches the defensive note.
		" Dark-type attack is super-effective (2x damage) to Mewtwo.",
	}
	for _, w := range wants {
		if !strings.Contains(p.State, w) {
			t.Errorf("state prompt missing %q\n---\n%s", w, p.State)
		}
	}
	if strings.Contains(p.State, "roost") {
		t.Error("non-damaging possible moves should be skipped")
	}
}

func TestHistory(t *testing.T) {
	blocks := []string{"t1", "t2", "t3", "t4", "t5", "t6", "Player1 sent p1a: Mew", "p2a: Scizor used Bullet Punch"}
	got := History(blocks, "p1")
	if strings.Contains(got, "t2") {
		t.Error("only the trailing blocks should be kept")
	}
	if !strings.HasPrefix(got, "Historical turns:\nt3\n") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "You sent Mew") || !strings.Contains(got, "opposing Scizor used") {
		t.Errorf("relabel p1: %q", got)
	}

	got = History([]string{"Player2 sent p2a: Mew", "p1a: Scizor used Bullet Punch"}, "p2")
	if !strings.Contains(got, "You sent Mew") || !strings.Contains(got, "opposing Scizor used") {
		t.Errorf("relabel p2: %q", got)
	}
	if History(nil, "p1") != "" {
		t.Error("empty history should render nothing")
	}
}

func TestPrompts_User(t *testing.T) {
	p := Prompts{State: "STATE\n", LastAction: "switch Garchomp"}

	sel := p.User(ConstraintSelection, `{"option_1":{"action":"move","target":"psychic"}}`)
	if strings.Contains(sel, OptionsPlaceholder) {
		t.Error("placeholder should be substituted")
	}
	if !strings.Contains(sel, `choices by considering their consequences: {"option_1"`) {
		t.Errorf("selection prompt: %q", sel)
	}
	if !strings.Contains(sel, `{"decision":{"action":"<move_or_switch>"`) {
		t.Error("selection prompt should request the nested decision object")
	}
	if !strings.HasPrefix(sel, "STATE\n") || !strings.Contains(sel, "your last move:\nswitch Garchomp\n") {
		t.Errorf("user prompt layout: %q", sel)
	}

	cot := p.User(ConstraintReasoned, "")
	if !strings.Contains(cot, `"thought":"<step-by-step-thinking>"`) {
		t.Error("reasoned prompt should ask for a thought")
	}
}

func TestSideConditions_Empty(t *testing.T) {
	if got := SideConditions(nil); got != "" {
		t.Errorf("got %q", got)
	}
	if got := SideConditions(battle.SideConditions{battle.Spikes: false}); got != "" {
		t.Errorf("absent conditions should render nothing, got %q", got)
	}
}

func TestSwitches_NoKnownAttacks(t *testing.T) {
	enc := NewEncoder(nil, nil)
	st := testState()
	st.Team["Garchomp"].Moves = []battle.Move{
		{ID: "swordsdance", Type: dex.Normal, Category: battle.CategoryStatus},
	}
	got := enc.Switches(st)
	if strings.Contains(got, "Moves:") {
		t.Errorf("bench pokemon without attacks should have no move list, got %q", got)
	}
	if !strings.Contains(got, "(faster than Scizor).") {
		t.Errorf("rest of the line missing: %q", got)
	}

	st.Team["Garchomp"].Moves = nil
	if got := enc.Switches(st); strings.Contains(got, "Moves:") {
		t.Errorf("unknown moves should render no move list, got %q", got)
	}
}
