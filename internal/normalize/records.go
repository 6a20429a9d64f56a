package normalize

import (
	"fmt"
	"math"
	"math/rand/v2"
	"net"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/sheet"
)

// PlaceholderAssetName names a PC whose row has no asset name.
func PlaceholderAssetName() string {
	return fmt.Sprintf("PC-%d", rand.IntN(10000))
}

// PC builds a workstation record. A missing asset name gets a placeholder and
// a missing status defaults to model.DefaultPCStatus.
func PC(row sheet.Row, m sheet.Mapping, branch string) (model.InventoryItem, error) {
	it := model.InventoryItem{
		Kind:         model.KindPC,
		Branch:       branch,
		AssetName:    m.Text(row, sheet.FieldAssetName),
		SerialNumber: m.Text(row, sheet.FieldSerialNumber),
		AssignedUser: m.Text(row, sheet.FieldAssignedUser),
		Email:        Email(m.Text(row, sheet.FieldEmail)),
		Service:      m.Text(row, sheet.FieldService),
		Description:  m.Text(row, sheet.FieldDescription),
		Status:       m.Text(row, sheet.FieldStatus),
		Remark:       m.Text(row, sheet.FieldRemark),
	}
	if c, ok := m.Cell(row, sheet.FieldAssignedOn); ok {
		it.AssignedOn = Date(c)
	}
	if it.AssetName == "" {
		it.AssetName = PlaceholderAssetName()
	}
	if it.Status == "" {
		it.Status = model.DefaultPCStatus
	}
	return it, nil
}

// Printer builds a printer record. Rows without a usable IP address fail.
func Printer(row sheet.Row, m sheet.Mapping, branch string) (model.InventoryItem, error) {
	it := model.InventoryItem{
		Kind:         model.KindPrinter,
		Branch:       branch,
		Location:     m.Text(row, sheet.FieldLocation),
		IPAddress:    m.Text(row, sheet.FieldIPAddress),
		Hostname:     m.Text(row, sheet.FieldHostname),
		SerialNumber: m.Text(row, sheet.FieldSerialNumber),
		Model:        m.Text(row, sheet.FieldModel),
	}
	if it.IPAddress == "" {
		return model.InventoryItem{}, missing(sheet.FieldIPAddress)
	}
	if net.ParseIP(it.IPAddress) == nil {
		return model.InventoryItem{}, &FieldError{Field: sheet.FieldIPAddress, Err: fmt.Errorf("%q is not an IP address", it.IPAddress)}
	}
	return it, nil
}

var colorFields = []string{sheet.FieldCyan, sheet.FieldMagenta, sheet.FieldYellow, sheet.FieldColorBlack}

// Consumable builds a toner/drum stock record. Brand and reference are
// required. The toner type comes from its column when there is one and is
// otherwise inferred from which colour columns are filled; quantities outside
// the type are then marked not applicable.
func Consumable(row sheet.Row, m sheet.Mapping, branch string) (model.Consumable, error) {
	c := model.Consumable{
		Branch:      branch,
		Brand:       m.Text(row, sheet.FieldBrand),
		Reference:   m.Text(row, sheet.FieldReference),
		Description: m.Text(row, sheet.FieldDescription),
		State:       model.StateAvailable,
	}
	if c.Brand == "" {
		return model.Consumable{}, missing(sheet.FieldBrand)
	}
	if c.Reference == "" {
		return model.Consumable{}, missing(sheet.FieldReference)
	}

	if raw := m.Text(row, sheet.FieldState); raw != "" {
		state, ok := parseState(raw)
		if !ok {
			return model.Consumable{}, &FieldError{Field: sheet.FieldState, Err: fmt.Errorf("unknown state %q", raw)}
		}
		c.State = state
	}

	targets := []struct {
		field string
		q     *model.Quantity
	}{
		{sheet.FieldBlack, &c.Black},
		{sheet.FieldCyan, &c.Cyan},
		{sheet.FieldMagenta, &c.Magenta},
		{sheet.FieldYellow, &c.Yellow},
		{sheet.FieldColorBlack, &c.ColorBlack},
		{sheet.FieldDrum, &c.Drum},
	}
	for _, target := range targets {
		cell, ok := m.Cell(row, target.field)
		if !ok {
			continue
		}
		n, err := quantity(cell)
		if err != nil {
			return model.Consumable{}, &FieldError{Field: target.field, Err: err}
		}
		*target.q = model.Applicable(n)
	}

	tonerType := model.TonerUnicolor
	if raw := m.Text(row, sheet.FieldTonerType); raw != "" {
		t, ok := model.ParseTonerType(sheet.NormalizeHeader(raw))
		if !ok {
			return model.Consumable{}, &FieldError{Field: sheet.FieldTonerType, Err: fmt.Errorf("unknown toner type %q", raw)}
		}
		tonerType = t
	} else {
		for _, field := range colorFields {
			if _, ok := m.Cell(row, field); ok {
				tonerType = model.TonerMulticolor
				break
			}
		}
	}

	out, err := model.Resentinel(c, tonerType, c.Drum.IsApplicable())
	if err != nil {
		return model.Consumable{}, err
	}
	return out, nil
}

func quantity(c sheet.Cell) (int, error) {
	if !c.IsNumber || c.Number < 0 || c.Number != math.Trunc(c.Number) || c.Number > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is not a whole number of 0 or more", model.ErrInvalidQuantity, c.String())
	}
	return int(c.Number), nil
}

func parseState(raw string) (string, bool) {
	switch sheet.NormalizeHeader(raw) {
	case "disponible", "available", "en stock":
		return model.StateAvailable, true
	case "endemande", "en demande", "commande", "en commande", "on order":
		return model.StateOnOrder, true
	}
	return "", false
}
