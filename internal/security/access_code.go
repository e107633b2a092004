package security

import "golang.org/x/crypto/bcrypt"

// Room access codes are stored as bcrypt hashes so a database leak does
// not expose every keyed room's code.

func HashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAccessCode reports whether the submitted code matches the stored
// hash. Comparison is byte-exact; no normalization is applied.
func VerifyAccessCode(hash, submitted string) bool {
	if hash == "" || submitted == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(submitted)) == nil
}
