package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted, cost-factored one-way hash of the
// password. The cost factor comes from configuration.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
// Verification is recompute-and-compare; the hash is never reversed.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
