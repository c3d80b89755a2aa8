package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, longer passwords are rejected.
const maxPasswordBytes = 72

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
