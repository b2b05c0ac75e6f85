package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	if err := ValidateName(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got: %v", err)
	}
	if err := ValidateName("bolt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateName(strings.Repeat("é", MaxNameLength)); err != nil {
		t.Errorf("name of %d characters: unexpected error: %v", MaxNameLength, err)
	}
	if err := ValidateName(strings.Repeat("a", MaxNameLength+1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a long name, got: %v", err)
	}
}

func TestValidateQuantity(t *testing.T) {
	if err := ValidateQuantity(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got: %v", err)
	}
	if err := ValidateQuantity(MaxQuantity + 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument above MaxQuantity, got: %v", err)
	}
	if err := ValidateQuantity(3000000000); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for 3000000000, got: %v", err)
	}
	for _, q := range []int{0, 1, 1 << 20, MaxQuantity} {
		if err := ValidateQuantity(q); err != nil {
			t.Errorf("quantity %d: unexpected error: %v", q, err)
		}
	}
}

func TestApplyDelta(t *testing.T) {
	next, err := ApplyDelta(5, -1)
	if err != nil || next != 4 {
		t.Errorf("expected 4, got %d (%v)", next, err)
	}

	next, err = ApplyDelta(0, -1)
	if !errors.Is(err, ErrOutOfStock) {
		t.Errorf("expected ErrOutOfStock, got: %v", err)
	}
	if next != 0 {
		t.Errorf("expected quantity to stay 0, got %d", next)
	}

	next, err = ApplyDelta(0, 1)
	if err != nil || next != 1 {
		t.Errorf("expected 1, got %d (%v)", next, err)
	}
}

func TestApplyDelta_UpperBound(t *testing.T) {
	next, err := ApplyDelta(MaxQuantity-1, 1)
	if err != nil || next != MaxQuantity {
		t.Errorf("expected %d, got %d (%v)", MaxQuantity, next, err)
	}

	next, err = ApplyDelta(MaxQuantity, 1)
	if !errors.Is(err, ErrQuantityLimit) {
		t.Errorf("expected ErrQuantityLimit, got: %v", err)
	}
	if errors.Is(err, ErrOutOfStock) {
		t.Errorf("overflow must not be reported as out of stock")
	}
	if next != MaxQuantity {
		t.Errorf("expected quantity to stay %d, got %d", MaxQuantity, next)
	}

	// Taking stock away is always fine at the top of the range
	next, err = ApplyDelta(MaxQuantity, -1)
	if err != nil || next != MaxQuantity-1 {
		t.Errorf("expected %d, got %d (%v)", MaxQuantity-1, next, err)
	}
}
