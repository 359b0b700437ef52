package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

// CheckPassword reports whether the candidate matches the stored hash.
func CheckPassword(hash, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, candidate) == nil
}
