package hash

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func (Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Argon2 struct{}

func (Argon2) Hash(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (Argon2) Verify(hash, password string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(hash))
	return err == nil && ok
}

func ForScheme(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "bcrypt":
		return Bcrypt{}, nil
	case "argon2":
		return Argon2{}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}

var ErrUnknownHash = errors.New("unknown hash format")

// Verify checks password against a hash produced by any supported scheme,
// detected from the encoded prefix.
func Verify(hash, password string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2"):
		return Argon2{}.Verify(hash, password), nil
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return Bcrypt{}.Verify(hash, password), nil
	}
	return false, ErrUnknownHash
}
