package dex

// #region imports
import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// #endregion imports

// #region type

// Type is an elemental type in canonical upper-case form.
type Type string

const (
	Bug      Type = "BUG"
	Dark     Type = "DARK"
	Dragon   Type = "DRAGON"
	Electric Type = "ELECTRIC"
	Fairy    Type = "FAIRY"
	Fighting Type = "FIGHTING"
	Fire     Type = "FIRE"
	Flying   Type = "FLYING"
	Ghost    Type = "GHOST"
	Grass    Type = "GRASS"
	Ground   Type = "GROUND"
	Ice      Type = "ICE"
	Normal   Type = "NORMAL"
	Poison   Type = "POISON"
	Psychic  Type = "PSYCHIC"
	Rock     Type = "ROCK"
	Steel    Type = "STEEL"
	Water    Type = "WATER"
)

// AllTypes lists every type in the fixed order used for prompt output.
var AllTypes = []Type{
	Bug, Dark, Dragon, Electric, Fairy, Fighting, Fire, Flying, Ghost,
	Grass, Ground, Ice, Normal, Poison, Psychic, Rock, Steel, Water,
}

var titleCaser = cases.Title(language.Und)

// ParseType accepts any casing ("fire", "Fire", "FIRE").
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown type %q", s)
}

// Valid reports whether t is one of the eighteen known types.
func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

// Title renders the type for prompts, e.g. "Fire".
func (t Type) Title() string {
	return titleCaser.String(string(t))
}

// Lower renders the type in lower case, e.g. "fire".
func (t Type) Lower() string {
	return strings.ToLower(string(t))
}

// UnmarshalText normalizes casing so JSON and YAML inputs can use any form.
func (t *Type) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = ""
		return nil
	}
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// #endregion type

// #region typing

// Typing is one or two types. A zero Typing means the types are unknown.
type Typing struct {
	Primary   Type
	Secondary Type
}

// NewTyping builds a Typing and rejects a duplicated secondary type.
func NewTyping(primary Type, secondary ...Type) (Typing, error) {
	if !primary.Valid() {
		return Typing{}, fmt.Errorf("invalid primary type %q", primary)
	}
	tp := Typing{Primary: primary}
	if len(secondary) > 1 {
		return Typing{}, fmt.Errorf("at most two types, got %d", 1+len(secondary))
	}
	if len(secondary) == 1 && secondary[0] != "" {
		if !secondary[0].Valid() {
			return Typing{}, fmt.Errorf("invalid secondary type %q", secondary[0])
		}
		if secondary[0] == primary {
			return Typing{}, fmt.Errorf("secondary type %s duplicates primary", primary)
		}
		tp.Secondary = secondary[0]
	}
	return tp, nil
}

// MustTyping is NewTyping for static tables and tests.
func MustTyping(primary Type, secondary ...Type) Typing {
	tp, err := NewTyping(primary, secondary...)
	if err != nil {
		panic(err)
	}
	return tp
}

// IsZero reports whether no type is known.
func (tp Typing) IsZero() bool {
	return tp.Primary == ""
}

// Types returns the one or two member types.
func (tp Typing) Types() []Type {
	switch {
	case tp.Primary == "":
		return nil
	case tp.Secondary == "":
		return []Type{tp.Primary}
	default:
		return []Type{tp.Primary, tp.Secondary}
	}
}

// String renders "Fire" or "Fire and Flying".
func (tp Typing) String() string {
	parts := make([]string, 0, 2)
	for _, t := range tp.Types() {
		parts = append(parts, t.Title())
	}
	return strings.Join(parts, " and ")
}

// #endregion typing

// #region typing-json

// MarshalJSON encodes a Typing as a list of lower-case type names.
func (tp Typing) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 2)
	for _, t := range tp.Types() {
		names = append(names, t.Lower())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes ["fire", "flying"] and enforces the Typing invariants.
func (tp *Typing) UnmarshalJSON(b []byte) error {
	var names []Type
	if err := json.Unmarshal(b, &names); err != nil {
		return fmt.Errorf("decode typing: %w", err)
	}
	if len(names) == 0 {
		*tp = Typing{}
		return nil
	}
	parsed, err := NewTyping(names[0], names[1:]...)
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// #endregion typing-json
