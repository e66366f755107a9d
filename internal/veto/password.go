package veto

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker decides whether password unlocks a stored secret. An
// empty secret never matches.
type PasswordChecker interface {
	Check(secret, password string) bool
}

// PlainChecker compares plaintext secrets in constant time.
type PlainChecker struct{}

func (PlainChecker) Check(secret, password string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

// BcryptChecker expects secrets produced by HashPassword.
type BcryptChecker struct{}

func (BcryptChecker) Check(secret, password string) bool {
	if secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// HashPasswords returns p with every non-empty secret bcrypt hashed.
func HashPasswords(p Passwords) (Passwords, error) {
	out := p
	for _, secret := range []*string{&out.TeamA, &out.TeamB, &out.Host} {
		if *secret == "" {
			continue
		}
		hash, err := HashPassword(*secret)
		if err != nil {
			return Passwords{}, err
		}
		*secret = hash
	}
	return out, nil
}
