package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Availability of a delivery of new PCs.
const (
	ArrivalAvailable = "disponible"
	ArrivalPending   = "pas encore disponible"
)

// ValidAvailability reports whether s is a known availability.
func ValidAvailability(s string) bool {
	return s == ArrivalAvailable || s == ArrivalPending
}

// NewPC is a delivery of PCs received by headquarters and not yet handed out
// to a branch.
type NewPC struct {
	ID           int64     `json:"id"`
	Brand        string    `json:"marque"`
	Model        string    `json:"modele"`
	Quantity     int       `json:"quantite_arrivee"`
	ArrivalDate  string    `json:"date_arrivage"`
	AdminName    string    `json:"admin_nom"`
	Supplier     string    `json:"fournisseur,omitempty"`
	Availability string    `json:"disponibilite"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate trims the delivery and checks its fields. An empty arrival date or
// admin name is accepted; the store fills them in.
func (n *NewPC) Validate() error {
	n.Brand = strings.TrimSpace(n.Brand)
	n.Model = strings.TrimSpace(n.Model)
	n.AdminName = strings.TrimSpace(n.AdminName)
	n.Supplier = strings.TrimSpace(n.Supplier)

	if n.Brand == "" || n.Model == "" {
		return errors.New("marque and modele required")
	}
	if n.Quantity < 1 {
		return errors.New("quantite_arrivee must be at least 1")
	}
	if n.ArrivalDate != "" {
		if _, err := time.Parse(time.DateOnly, n.ArrivalDate); err != nil {
			return errors.New("date_arrivage must be YYYY-MM-DD")
		}
	}
	if !ValidAvailability(n.Availability) {
		return fmt.Errorf("disponibilite must be %q or %q", ArrivalAvailable, ArrivalPending)
	}
	return nil
}
