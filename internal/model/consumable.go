package model

import (
	"errors"
	"fmt"
	"time"
)

// TonerType says which toner fields a consumable tracks.
type TonerType string

// Toner types.
const (
	TonerUnicolor   TonerType = "unicolor"
	TonerMulticolor TonerType = "multicolor"
)

// Valid reports whether t is a known toner type.
func (t TonerType) Valid() bool {
	return t == TonerUnicolor || t == TonerMulticolor
}

// ParseTonerType accepts the canonical names and the labels operators put in
// spreadsheets ("noir", "couleur", "cmyk", ...). The input must already be
// case-folded and trimmed.
func ParseTonerType(s string) (TonerType, bool) {
	switch s {
	case "unicolor", "unicolore", "mono", "monochrome", "noir", "black":
		return TonerUnicolor, true
	case "multicolor", "multicolore", "couleur", "color", "colour", "cmyk":
		return TonerMulticolor, true
	}
	return "", false
}

// Consumable states.
const (
	StateAvailable = "disponible"
	StateOnOrder   = "endemande"
)

// ValidState reports whether s is a known consumable state.
func ValidState(s string) bool {
	return s == StateAvailable || s == StateOnOrder
}

// ErrSentinelInvariant is returned when a consumable's quantities disagree
// with its toner type.
var ErrSentinelInvariant = errors.New("quantities do not match toner type")

// Consumable is a printer toner/drum stock record held by a branch.
type Consumable struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand"`
	Reference   string    `json:"reference"`
	TonerType   TonerType `json:"toner_type,omitempty"`
	Black       Quantity  `json:"black"`
	Cyan        Quantity  `json:"cyan"`
	Magenta     Quantity  `json:"magenta"`
	Yellow      Quantity  `json:"yellow"`
	ColorBlack  Quantity  `json:"color_black"`
	Drum        Quantity  `json:"drum"`
	Branch      string    `json:"branch"`
	Description string    `json:"description,omitempty"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Consumable) colors() []*Quantity {
	return []*Quantity{&c.Cyan, &c.Magenta, &c.Yellow, &c.ColorBlack}
}

// HasDrum reports whether the consumable tracks a drum.
func (c Consumable) HasDrum() bool {
	return c.Drum.IsApplicable()
}

// Classify returns the toner type of c. An explicit tag wins; records without
// one are classified from which fields carry the sentinel, and records with no
// sentinel at all fall back to whether black toner is in stock.
func Classify(c Consumable) TonerType {
	if c.TonerType.Valid() {
		return c.TonerType
	}
	if !c.Black.IsApplicable() {
		return TonerMulticolor
	}
	for _, q := range c.colors() {
		if !q.IsApplicable() {
			return TonerUnicolor
		}
	}
	if c.Black.Or(0) > 0 {
		return TonerUnicolor
	}
	return TonerMulticolor
}

// Resentinel returns a copy of c configured for toner type t. Fields outside t
// become not applicable, fields inside t keep their count (0 if they had
// none). The drum is not applicable unless hasDrum, in which case it keeps its
// count or starts at 0.
func Resentinel(c Consumable, t TonerType, hasDrum bool) (Consumable, error) {
	if !t.Valid() {
		return Consumable{}, fmt.Errorf("unknown toner type %q", t)
	}
	for _, q := range append(c.colors(), &c.Black, &c.Drum) {
		if err := q.check(); err != nil {
			return Consumable{}, err
		}
	}

	out := c
	out.TonerType = t
	keep := func(q Quantity) Quantity { return Applicable(q.Or(0)) }

	if t == TonerUnicolor {
		out.Black = keep(c.Black)
		for _, q := range out.colors() {
			*q = NotApplicable()
		}
	} else {
		out.Black = NotApplicable()
		for _, q := range out.colors() {
			*q = keep(*q)
		}
	}

	if hasDrum {
		out.Drum = keep(c.Drum)
	} else {
		out.Drum = NotApplicable()
	}
	return out, nil
}

// Validate checks that c is well formed: brand, reference, branch and state
// are set, every tracked quantity is non-negative, and exactly the fields
// outside its toner type carry the sentinel.
func (c Consumable) Validate() error {
	if c.Brand == "" {
		return errors.New("brand required")
	}
	if c.Reference == "" {
		return errors.New("reference required")
	}
	if c.Branch == "" {
		return errors.New("branch required")
	}
	if !ValidState(c.State) {
		return fmt.Errorf("state must be %q or %q", StateAvailable, StateOnOrder)
	}
	if !c.TonerType.Valid() {
		return fmt.Errorf("toner_type must be %q or %q", TonerUnicolor, TonerMulticolor)
	}
	for _, q := range append(c.colors(), &c.Black, &c.Drum) {
		if err := q.check(); err != nil {
			return err
		}
	}

	wantBlack := c.TonerType == TonerUnicolor
	if c.Black.IsApplicable() != wantBlack {
		return fmt.Errorf("%w: black toner", ErrSentinelInvariant)
	}
	for _, q := range c.colors() {
		if q.IsApplicable() == wantBlack {
			return fmt.Errorf("%w: color toner", ErrSentinelInvariant)
		}
	}
	return nil
}

// DisplayField is one quantity shown to an operator.
type DisplayField struct {
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

// Display lists the quantities an operator should see. Fields that do not
// apply are left out rather than shown as negative stock.
func (c Consumable) Display() []DisplayField {
	all := []struct {
		label string
		q     Quantity
	}{
		{"Toner noir", c.Black},
		{"Cyan", c.Cyan},
		{"Magenta", c.Magenta},
		{"Jaune", c.Yellow},
		{"Noir couleur", c.ColorBlack},
		{"Drum", c.Drum},
	}

	var fields []DisplayField
	for _, f := range all {
		if n, ok := f.q.Get(); ok {
			fields = append(fields, DisplayField{Label: f.label, Quantity: n})
		}
	}
	return fields
}
