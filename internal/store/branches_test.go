package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mautomotiv/inventaire/internal/db"
	"github.com/mautomotiv/inventaire/internal/model"
)

func TestCreateAndListBranches(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateBranch(ctx, database, "Rabat", "Agdal")
	b, err := CreateBranch(ctx, database, "Casablanca", "Ain Sebaa")
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if b.Name != "Casablanca" || b.Location != "Ain Sebaa" {
		t.Errorf("unexpected branch %+v", b)
	}

	branches, err := ListBranches(ctx, database)
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 || branches[0].Name != "Casablanca" {
		t.Errorf("expected branches ordered by name, got %+v", branches)
	}

	if _, err := CreateBranch(ctx, database, "Rabat", ""); err == nil {
		t.Error("expected duplicate branch name to fail")
	}

	byName, err := GetBranchByName(ctx, database, "Rabat")
	if err != nil || byName == nil {
		t.Fatalf("GetBranchByName: %v, %v", byName, err)
	}
}

func TestRenameBranchCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	b, _ := CreateBranch(ctx, database, "Tanger", "")
	CreateUser(ctx, database, "youssef", "h", model.RoleResponsable, "Tanger")
	CreateInventoryItem(ctx, database, model.InventoryItem{Kind: model.KindPC, Branch: "Tanger", AssetName: "PC-1"})

	if err := UpdateBranch(ctx, database, b.ID, "Tanger Med", "Port"); err != nil {
		t.Fatalf("UpdateBranch: %v", err)
	}

	items, _ := ListInventoryItems(ctx, database, ItemFilter{Branch: "Tanger Med"})
	if len(items) != 1 {
		t.Errorf("expected item to follow rename, got %d", len(items))
	}
	u, _ := GetUserByUsername(ctx, database, "youssef")
	if u.Branch != "Tanger Med" {
		t.Errorf("expected user to follow rename, got %q", u.Branch)
	}
}

func TestDeleteBranch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	busy, _ := CreateBranch(ctx, database, "Oujda", "")
	empty, _ := CreateBranch(ctx, database, "Nador", "")
	CreateInventoryItem(ctx, database, model.InventoryItem{Kind: model.KindPrinter, Branch: "Oujda", IPAddress: "10.1.1.1"})

	if err := DeleteBranch(ctx, database, busy.ID); !errors.Is(err, ErrBranchInUse) {
		t.Errorf("expected ErrBranchInUse, got %v", err)
	}
	if err := DeleteBranch(ctx, database, empty.ID); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if got, _ := GetBranch(ctx, database, empty.ID); got != nil {
		t.Error("deleted branch still returned")
	}

	// The name is free again.
	if _, err := CreateBranch(ctx, database, "Nador", ""); err != nil {
		t.Errorf("recreating deleted branch: %v", err)
	}
}

func TestBranchImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	b, _ := CreateBranch(ctx, database, "Fès", "")
	if err := SetBranchImage(ctx, database, b.ID, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetBranchImage: %v", err)
	}

	data, mime, err := GetBranchImage(ctx, database, b.ID)
	if err != nil {
		t.Fatalf("GetBranchImage: %v", err)
	}
	if len(data) != 2 || mime != "image/jpeg" {
		t.Errorf("unexpected image %v %q", data, mime)
	}

	got, _ := GetBranch(ctx, database, b.ID)
	if got.ImageMime != "image/jpeg" {
		t.Errorf("ImageMime = %q", got.ImageMime)
	}
}
