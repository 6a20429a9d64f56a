package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Sentinel is the wire and storage encoding of a quantity that does not apply
// to an item's current configuration.
const Sentinel = -1

// ErrInvalidQuantity is returned when a stored or submitted quantity is
// neither the sentinel nor a non-negative integer.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Quantity is a stock count that may be not applicable. The zero value is
// NotApplicable.
type Quantity struct {
	n     int
	valid bool
}

// Applicable returns a tracked quantity of n.
func Applicable(n int) Quantity {
	return Quantity{n: n, valid: true}
}

// NotApplicable returns a quantity that is not tracked.
func NotApplicable() Quantity {
	return Quantity{}
}

// DecodeQuantity converts the wire encoding into a Quantity.
func DecodeQuantity(v int64) (Quantity, error) {
	switch {
	case v == Sentinel:
		return NotApplicable(), nil
	case v >= 0:
		return Applicable(int(v)), nil
	default:
		return Quantity{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, v)
	}
}

// ParseQuantity parses a decimal string in the wire encoding.
func ParseQuantity(s string) (Quantity, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return DecodeQuantity(v)
}

// Get returns the count and whether the quantity applies.
func (q Quantity) Get() (int, bool) {
	return q.n, q.valid
}

// IsApplicable reports whether the quantity is tracked.
func (q Quantity) IsApplicable() bool {
	return q.valid
}

// Or returns the count, or fallback when the quantity does not apply.
func (q Quantity) Or(fallback int) int {
	if !q.valid {
		return fallback
	}
	return q.n
}

// Encode returns the wire encoding: the count, or Sentinel.
func (q Quantity) Encode() int {
	if !q.valid {
		return Sentinel
	}
	return q.n
}

// check reports a tracked quantity that went negative.
func (q Quantity) check() error {
	if q.valid && q.n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, q.n)
	}
	return nil
}

func (q Quantity) String() string {
	if !q.valid {
		return "n/a"
	}
	return strconv.Itoa(q.n)
}

// MarshalJSON encodes the quantity as an integer, -1 when not applicable.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if err := q.check(); err != nil {
		return nil, err
	}
	return []byte(strconv.Itoa(q.Encode())), nil
}

// UnmarshalJSON accepts -1 or a non-negative integer. Anything else, including
// fractional numbers and strings, is rejected.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, data)
	}
	decoded, err := DecodeQuantity(v)
	if err != nil {
		return err
	}
	*q = decoded
	return nil
}

// Value implements driver.Valuer. Quantities are stored in their wire encoding.
func (q Quantity) Value() (driver.Value, error) {
	if err := q.check(); err != nil {
		return nil, err
	}
	return int64(q.Encode()), nil
}

// Scan implements sql.Scanner.
func (q *Quantity) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		decoded, err := DecodeQuantity(v)
		if err != nil {
			return err
		}
		*q = decoded
		return nil
	case nil:
		*q = NotApplicable()
		return nil
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidQuantity, src)
	}
}
