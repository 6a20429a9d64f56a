package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mautomotiv/inventaire/internal/db"
	"github.com/mautomotiv/inventaire/internal/model"
)

func unicolorToner(branch string, black int) model.Consumable {
	return model.Consumable{
		Brand:     "HP",
		Reference: "26A",
		TonerType: model.TonerUnicolor,
		Black:     model.Applicable(black),
		Branch:    branch,
		State:     model.StateAvailable,
	}
}

func TestCreateConsumableStoresSentinels(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c, err := CreateConsumable(ctx, database, unicolorToner("Rabat", 0))
	if err != nil {
		t.Fatalf("CreateConsumable: %v", err)
	}
	if n, ok := c.Black.Get(); !ok || n != 0 {
		t.Errorf("black = %v, want 0", c.Black)
	}
	if c.Cyan.IsApplicable() || c.Drum.IsApplicable() {
		t.Errorf("expected cyan and drum not applicable, got %v %v", c.Cyan, c.Drum)
	}

	var cyan, drum int
	err = database.QueryRow(`SELECT cyan, drum FROM consumables WHERE id = ?`, c.ID).Scan(&cyan, &drum)
	if err != nil {
		t.Fatal(err)
	}
	if cyan != model.Sentinel || drum != model.Sentinel {
		t.Errorf("stored cyan/drum = %d/%d, want -1/-1", cyan, drum)
	}
}

func TestCreateConsumableRejectsViolations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	stale := unicolorToner("Rabat", 2)
	stale.Cyan = model.Applicable(1)

	negative := unicolorToner("Rabat", -3)

	untyped := unicolorToner("Rabat", 0)
	untyped.TonerType = ""
	untyped.Cyan = model.Applicable(0)
	untyped.Magenta = model.Applicable(0)
	untyped.Yellow = model.Applicable(0)
	untyped.ColorBlack = model.Applicable(0)

	for name, c := range map[string]model.Consumable{
		"stale colour":       stale,
		"negative":           negative,
		"no sentinel at all": untyped,
	} {
		if _, err := CreateConsumable(ctx, database, c); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestCreateConsumableClassifiesUntagged(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c := model.Consumable{
		Brand:      "Canon",
		Reference:  "C-EXV 49",
		Cyan:       model.Applicable(1),
		Magenta:    model.Applicable(2),
		Yellow:     model.Applicable(0),
		ColorBlack: model.Applicable(4),
		Branch:     "Fès",
	}
	got, err := CreateConsumable(ctx, database, c)
	if err != nil {
		t.Fatalf("CreateConsumable: %v", err)
	}
	if got.TonerType != model.TonerMulticolor {
		t.Errorf("toner type = %q, want multicolor", got.TonerType)
	}
	if got.State != model.StateAvailable {
		t.Errorf("state = %q, want default", got.State)
	}
}

func TestUpdateConsumableTypeChangeResentinels(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c, _ := CreateConsumable(ctx, database, unicolorToner("Rabat", 7))

	update := *c
	update.TonerType = model.TonerMulticolor
	update.Magenta = model.Applicable(3)
	update.Drum = model.Applicable(1)
	got, err := UpdateConsumable(ctx, database, c.ID, update)
	if err != nil {
		t.Fatalf("UpdateConsumable: %v", err)
	}

	if got.Black.IsApplicable() {
		t.Errorf("black should no longer apply, got %v", got.Black)
	}
	if n, _ := got.Magenta.Get(); n != 3 {
		t.Errorf("magenta = %v, want 3", got.Magenta)
	}
	if n, ok := got.Cyan.Get(); !ok || n != 0 {
		t.Errorf("cyan = %v, want 0", got.Cyan)
	}
	if n, ok := got.Drum.Get(); !ok || n != 1 {
		t.Errorf("drum = %v, want 1", got.Drum)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("stored record violates invariant: %v", err)
	}
}

func TestUpdateConsumableSameTypeMustBeValid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c, _ := CreateConsumable(ctx, database, unicolorToner("Rabat", 7))

	update := *c
	update.Yellow = model.Applicable(2)
	if _, err := UpdateConsumable(ctx, database, c.ID, update); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	update = *c
	update.Black = model.Applicable(6)
	update.State = model.StateOnOrder
	got, err := UpdateConsumable(ctx, database, c.ID, update)
	if err != nil {
		t.Fatalf("UpdateConsumable: %v", err)
	}
	if n, _ := got.Black.Get(); n != 6 || got.State != model.StateOnOrder {
		t.Errorf("unexpected consumable %+v", got)
	}
}

func TestListConsumablesFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateConsumable(ctx, database, unicolorToner("Rabat", 1))
	onOrder := unicolorToner("Rabat", 0)
	onOrder.Reference = "85A"
	onOrder.State = model.StateOnOrder
	CreateConsumable(ctx, database, onOrder)
	other := unicolorToner("Fès", 0)
	other.Brand = "Brother"
	other.Reference = "TN_2420"
	CreateConsumable(ctx, database, other)

	tests := []struct {
		filter ConsumableFilter
		want   int
	}{
		{ConsumableFilter{}, 3},
		{ConsumableFilter{Branch: "Rabat"}, 2},
		{ConsumableFilter{State: model.StateOnOrder}, 1},
		{ConsumableFilter{Search: "hp"}, 2},
		{ConsumableFilter{Search: "85"}, 1},
		{ConsumableFilter{Search: "N_2"}, 1},
		{ConsumableFilter{Search: "%"}, 0},
		{ConsumableFilter{Branch: "Rabat", Search: "brother"}, 0},
	}
	for _, tt := range tests {
		got, err := ListConsumables(ctx, database, tt.filter)
		if err != nil {
			t.Fatalf("ListConsumables(%+v): %v", tt.filter, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListConsumables(%+v) = %d, want %d", tt.filter, len(got), tt.want)
		}
	}
}

func TestDeleteConsumable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c, _ := CreateConsumable(ctx, database, unicolorToner("Rabat", 1))
	if err := DeleteConsumable(ctx, database, c.ID); err != nil {
		t.Fatalf("DeleteConsumable: %v", err)
	}
	if got, _ := GetConsumable(ctx, database, c.ID); got != nil {
		t.Error("expected consumable to be gone")
	}
}
