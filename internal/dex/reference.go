package dex

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// #endregion imports

// #region file-names

// Enrichment file names inside a reference directory.
const (
	MoveEffectsFile      = "moves_effect.json"
	AbilityEffectsFile   = "ability_effect.json"
	ItemEffectsFile      = "item_effect.json"
	SpeciesMovesFile     = "pokemon_move_dict.json"
	SpeciesAbilitiesFile = "pokemon_ability_dict.json"
)

// #endregion file-names

// #region types

// Described is a display name plus its effect text.
type Described struct {
	Name   string `json:"name"`
	Effect string `json:"effect"`
}

// PossibleMove is a move a species may carry, with its usage frequency.
type PossibleMove struct {
	ID    string
	Name  string
	Type  Type
	Power int
	Usage float64
}

// UnmarshalJSON decodes the [name, type, power, usage] tuple form.
func (m *PossibleMove) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) < 4 {
		return fmt.Errorf("possible move: want 4 fields, got %d", len(tuple))
	}
	var typeName string
	if err := json.Unmarshal(tuple[0], &m.Name); err != nil {
		return fmt.Errorf("possible move name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &typeName); err != nil {
		return fmt.Errorf("possible move type: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &m.Power); err != nil {
		return fmt.Errorf("possible move power: %w", err)
	}
	if err := json.Unmarshal(tuple[3], &m.Usage); err != nil {
		return fmt.Errorf("possible move usage: %w", err)
	}
	// Unknown types (e.g. "???") keep the move but drop its type.
	if t, err := ParseType(typeName); err == nil {
		m.Type = t
	}
	return nil
}

// Reference holds the optional enrichment tables used to annotate prompts.
// Every lookup degrades to a zero value when data is missing.
type Reference struct {
	moveEffects      map[string]string
	abilities        map[string]Described
	items            map[string]Described
	speciesMoves     map[string][]PossibleMove
	speciesAbilities map[string][]string
}

// #endregion types

// #region ids

// ToID lower-cases s and drops everything but letters and digits,
// e.g. "Landorus-Therian" -> "landorustherian".
func ToID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// #endregion ids

// #region load

// EmptyReference returns a Reference with no enrichment data.
func EmptyReference() *Reference {
	return &Reference{
		moveEffects:      map[string]string{},
		abilities:        map[string]Described{},
		items:            map[string]Described{},
		speciesMoves:     map[string][]PossibleMove{},
		speciesAbilities: map[string][]string{},
	}
}

// LoadReference reads the enrichment tables from dir. Missing files are
// skipped; malformed files are an error.
func LoadReference(dir string) (*Reference, error) {
	ref := EmptyReference()
	if dir == "" {
		return ref, nil
	}

	var moveEffects map[string]string
	if err := readOptionalJSON(filepath.Join(dir, MoveEffectsFile), &moveEffects); err != nil {
		return nil, err
	}
	var abilities, items map[string]Described
	if err := readOptionalJSON(filepath.Join(dir, AbilityEffectsFile), &abilities); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, ItemEffectsFile), &items); err != nil {
		return nil, err
	}
	var speciesMoves map[string]map[string]PossibleMove
	if err := readOptionalJSON(filepath.Join(dir, SpeciesMovesFile), &speciesMoves); err != nil {
		return nil, err
	}
	var speciesAbilities map[string][]string
	if err := readOptionalJSON(filepath.Join(dir, SpeciesAbilitiesFile), &speciesAbilities); err != nil {
		return nil, err
	}

	for k, v := range moveEffects {
		ref.moveEffects[ToID(k)] = v
	}
	for k, v := range abilities {
		ref.abilities[ToID(k)] = v
	}
	for k, v := range items {
		ref.items[ToID(k)] = v
	}
	for species, moves := range speciesMoves {
		list := make([]PossibleMove, 0, len(moves))
		for id, m := range moves {
			m.ID = ToID(id)
			list = append(list, m)
		}
		sortByUsage(list)
		ref.speciesMoves[ToID(species)] = list
	}
	for species, abs := range speciesAbilities {
		ref.speciesAbilities[ToID(species)] = abs
	}

	log.Printf("[DEX] reference loaded from %s: moves=%d abilities=%d items=%d species=%d",
		dir, len(ref.moveEffects), len(ref.abilities), len(ref.items), len(ref.speciesMoves))
	return ref, nil
}

func readOptionalJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[DEX] %s not found, skipping", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func sortByUsage(list []PossibleMove) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Usage != list[j].Usage {
			return list[i].Usage > list[j].Usage
		}
		return list[i].ID < list[j].ID
	})
}

// #endregion load

// #region builders

// WithMoveEffect adds a move effect. Intended for building tables in code and tests.
func (r *Reference) WithMoveEffect(moveID, effect string) *Reference {
	r.moveEffects[ToID(moveID)] = effect
	return r
}

// WithAbility adds an ability description.
func (r *Reference) WithAbility(id string, d Described) *Reference {
	r.abilities[ToID(id)] = d
	return r
}

// WithItem adds an item description.
func (r *Reference) WithItem(id string, d Described) *Reference {
	r.items[ToID(id)] = d
	return r
}

// WithSpeciesMoves sets the possible moves of a species.
func (r *Reference) WithSpeciesMoves(species string, moves ...PossibleMove) *Reference {
	list := append([]PossibleMove(nil), moves...)
	sortByUsage(list)
	r.speciesMoves[ToID(species)] = list
	return r
}

// WithSpeciesAbilities sets the possible abilities of a species.
func (r *Reference) WithSpeciesAbilities(species string, abilities ...string) *Reference {
	r.speciesAbilities[ToID(species)] = abilities
	return r
}

// #endregion builders

// #region lookups

// MoveEffect returns the effect text of a move, or "".
func (r *Reference) MoveEffect(moveID string) string {
	return r.moveEffects[ToID(moveID)]
}

// Ability returns the description of an ability.
func (r *Reference) Ability(id string) (Described, bool) {
	d, ok := r.abilities[ToID(id)]
	return d, ok
}

// Item returns the description of an item.
func (r *Reference) Item(id string) (Described, bool) {
	d, ok := r.items[ToID(id)]
	return d, ok
}

// PossibleMoves returns the moves a species may carry, most used first.
func (r *Reference) PossibleMoves(species string) []PossibleMove {
	return r.speciesMoves[ToID(species)]
}

// OnlyAbility returns the ability of a species that has exactly one.
func (r *Reference) OnlyAbility(species string) (string, bool) {
	abs := r.speciesAbilities[ToID(species)]
	if len(abs) != 1 {
		return "", false
	}
	return abs[0], true
}

// #endregion lookups
