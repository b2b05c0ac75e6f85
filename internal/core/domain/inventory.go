package domain

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// MaxQuantity is the largest stock count any surface or driver can carry.
	MaxQuantity = math.MaxInt32
	// MaxNameLength is counted in characters, not bytes.
	MaxNameLength = 100
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("item already exists")
	ErrNotFound        = errors.New("item not found")
	ErrOutOfStock      = errors.New("item is out of stock")
	ErrQuantityLimit   = errors.New("quantity limit exceeded")
)

// Item is a named, non-negative stock count. Names are matched exactly.
type Item struct {
	Name     string `json:"name" msgpack:"name"`
	Quantity int    `json:"quantity" msgpack:"quantity"`
}

// ValidateName rejects empty names and names longer than MaxNameLength.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters, got %d", ErrInvalidArgument, MaxNameLength, n)
	}
	return nil
}

// ValidateQuantity rejects quantities outside [0, MaxQuantity].
func ValidateQuantity(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be an integer between 0 and %d, got %d", ErrInvalidArgument, MaxQuantity, quantity)
	}
	return nil
}

// ApplyDelta returns the quantity after adding delta. It fails with
// ErrOutOfStock when the result would drop below zero and with
// ErrQuantityLimit when it would pass MaxQuantity.
func ApplyDelta(current, delta int) (int, error) {
	if delta > 0 && current > MaxQuantity-delta {
		return current, ErrQuantityLimit
	}
	next := current + delta
	if next < 0 {
		return current, ErrOutOfStock
	}
	return next, nil
}
