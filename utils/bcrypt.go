package utils

import (
	"github.com/paynetra/reports_backend/config"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes with a cost tunable via BCRYPT_COST. Out-of-range or
// unset values use the library default.
func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcryptCost())
}

func bcryptCost() int {
	cost := config.IntFromEnv("BCRYPT_COST", bcrypt.DefaultCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
