package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pass123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(hash, "pass123"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatalf("wrong password must not verify")
	}
}

func TestNewBcryptHasher_OutOfRangeCost(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MaxCost + 1} {
		if h := NewBcryptHasher(cost); h.cost != bcrypt.DefaultCost {
			t.Fatalf("cost %d: expected default, got %d", cost, h.cost)
		}
	}
}
