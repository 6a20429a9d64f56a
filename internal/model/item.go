package model

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ItemKind discriminates inventory items.
type ItemKind string

// Item kinds.
const (
	KindPC      ItemKind = "pc"
	KindPrinter ItemKind = "printer"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == KindPC || k == KindPrinter
}

// DefaultPCStatus is the status given to PCs created without one.
const DefaultPCStatus = "Actif"

// InventoryItem is a PC or printer assigned to a branch. PC fields and printer
// fields share one record; the ones that do not belong to Kind stay empty.
type InventoryItem struct {
	ID     int64    `json:"id"`
	Kind   ItemKind `json:"kind"`
	Branch string   `json:"branch"`

	// PC fields.
	AssetName    string `json:"asset_name,omitempty"`
	AssignedUser string `json:"assigned_user,omitempty"`
	Email        string `json:"email,omitempty"`
	Service      string `json:"service,omitempty"`
	Description  string `json:"description,omitempty"`
	AssignedOn   string `json:"assigned_on,omitempty"`
	Status       string `json:"status,omitempty"`
	Remark       string `json:"remark,omitempty"`

	// Printer fields.
	Location  string `json:"location,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Model     string `json:"model,omitempty"`

	SerialNumber string `json:"serial_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields the collaborator API requires.
func (it InventoryItem) Validate() error {
	if !it.Kind.Valid() {
		return fmt.Errorf("kind must be %q or %q", KindPC, KindPrinter)
	}
	if it.Branch == "" {
		return errors.New("branch required")
	}
	if it.AssignedOn != "" {
		if _, err := time.Parse(time.DateOnly, it.AssignedOn); err != nil {
			return fmt.Errorf("assigned_on must be YYYY-MM-DD")
		}
	}
	switch it.Kind {
	case KindPC:
		if it.AssetName == "" {
			return errors.New("asset_name required")
		}
	case KindPrinter:
		if it.IPAddress == "" {
			return errors.New("ip_address required")
		}
		if net.ParseIP(it.IPAddress) == nil {
			return fmt.Errorf("invalid ip_address %q", it.IPAddress)
		}
	}
	return nil
}
