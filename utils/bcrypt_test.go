package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4") // min cost keeps the test fast

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(string(hash), "s3cret"); err != nil {
		t.Fatalf("expected matching password to verify: %v", err)
	}
	if err := ComparePassword(string(hash), "wrong"); err == nil {
		t.Fatalf("expected mismatching password to fail")
	}
}

func TestBcryptCostFromEnv(t *testing.T) {
	t.Setenv("BCRYPT_COST", "5")
	hash, err := HashPassword("x")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if cost, _ := bcrypt.Cost(hash); cost != 5 {
		t.Fatalf("expected cost 5; got %d", cost)
	}

	// Out-of-range values fall back to the library default.
	t.Setenv("BCRYPT_COST", "99")
	if got := bcryptCost(); got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost for out-of-range value; got %d", got)
	}
}
