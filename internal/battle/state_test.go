package battle

import (
	"encoding/json"
	"testing"

	"github.com/danielpatrickdp/battle-agent/internal/dex"
)

func TestBattleState_DecodeAndAccessors(t *testing.T) {
	raw := `{
		"battle_tag": "battle-gen8randombattle-1",
		"turn": 3,
		"player": "p1",
		"team": {
			"Garchomp": {"species": "Garchomp", "types": ["dragon", "ground"], "stats": {"atk": 359, "def": 289, "spa": 259, "spd": 269, "spe": 333}, "hp_fraction": 1},
			"Toxapex": {"species": "Toxapex", "types": ["poison", "water"], "stats": {"atk": 158, "def": 443, "spa": 142, "spd": 383, "spe": 106}, "hp_fraction": 0.4, "status": "tox"}
		},
		"opponent_team": {
			"Scizor": {"species": "Scizor", "types": ["bug", "steel"], "stats": {"atk": 359}, "hp_fraction": 0.5},
			"Pikachu": {"species": "Pikachu", "types": ["electric"], "fainted": true, "hp_fraction": 0}
		},
		"active": "Garchomp",
		"opponent_active": "Scizor",
		"side_conditions": {"stealth_rock": true, "spikes": true},
		"available_moves": [{"id": "earthquake", "type": "ground", "category": "physical", "base_power": 100, "accuracy": 1}],
		"available_switches": ["Toxapex", "Missing"]
	}`
	var st BattleState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.ActivePokemon().Typing != dex.MustTyping(dex.Dragon, dex.Ground) {
		t.Errorf("active typing: %v", st.ActivePokemon().Typing)
	}
	if st.AvailableMoves[0].Type != dex.Ground {
		t.Errorf("move type: %q", st.AvailableMoves[0].Type)
	}
	if sw := st.Switches(); len(sw) != 1 || sw[0].Species != "Toxapex" {
		t.Errorf("switches: %+v", sw)
	}
	if st.OpponentRemaining() != 5 {
		t.Errorf("opponent remaining: got %d, want 5", st.OpponentRemaining())
	}
	if st.NeedsReplacement() {
		t.Error("active is healthy, no replacement needed")
	}
	conds := st.SideConditions.Sorted()
	if len(conds) != 2 || conds[0] != Spikes || conds[1] != StealthRock {
		t.Errorf("sorted conditions: %v", conds)
	}
	if st.Team["Toxapex"].Status.Describe() != "toxic" {
		t.Errorf("status: %q", st.Team["Toxapex"].Status.Describe())
	}
}

func TestBattleState_NeedsReplacement(t *testing.T) {
	st := BattleState{
		Team: map[string]*Pokemon{
			"Mew":  {Species: "Mew", Fainted: true},
			"Ditto": {Species: "Ditto", HPFraction: 1},
		},
		Active: "Mew",
	}
	if st.NeedsReplacement() {
		t.Error("no switches available, cannot replace")
	}
	st.AvailableSwitches = []string{"Ditto"}
	if !st.NeedsReplacement() {
		t.Error("fainted active with a bench should need replacement")
	}
}

func TestAction_JSON(t *testing.T) {
	b, err := json.Marshal(MoveAction("psychic"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"move":"psychic"}` {
		t.Errorf("got %s", b)
	}
	b, _ = json.Marshal(SwitchAction("Garchomp"))
	if string(b) != `{"switch":"Garchomp"}` {
		t.Errorf("got %s", b)
	}
	if SwitchAction("Garchomp").String() != "switch Garchomp" {
		t.Errorf("string form: %q", SwitchAction("Garchomp").String())
	}
}

func TestPokemon_EffectiveStat(t *testing.T) {
	p := Pokemon{Stats: StatBlock{Atk: 200}, Boosts: BoostState{Atk: 2}}
	if got := p.EffectiveStat(dex.StatAtk); got != 400 {
		t.Errorf("got %v, want 400", got)
	}
	p.Boosts.Atk = 10
	if got := p.EffectiveStat(dex.StatAtk); got != 800 {
		t.Errorf("clamped: got %v, want 800", got)
	}
}
