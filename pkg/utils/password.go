package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength  = 16
	keyLength   = 32
	timeCost    = 3
	memoryCost  = 64 * 1024
	parallelism = 2
)

// HashPassword hashes a password using Argon2id.
// Format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	return "$argon2id$v=19$m=65536,t=3,p=2$" +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(hash), nil
}

// VerifyPassword verifies a password against a stored hash using a
// constant-time comparison.
func VerifyPassword(password, hashedPassword string) (bool, error) {
	salt, hash, err := decodeHash(hashedPassword)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)
	return subtle.ConstantTimeCompare(computed, hash) == 1, nil
}

func decodeHash(encoded string) (salt, hash []byte, err error) {
	// $argon2id$v=19$m=...$salt$hash -> 6 dollar-separated fields
	var fields []string
	start := 0
	for i := 0; i <= len(encoded); i++ {
		if i == len(encoded) || encoded[i] == '$' {
			fields = append(fields, encoded[start:i])
			start = i + 1
		}
	}
	if len(fields) != 6 || fields[1] != "argon2id" {
		return nil, nil, errors.New("invalid hash format")
	}

	salt, err = base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return nil, nil, err
	}
	hash, err = base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return nil, nil, err
	}
	return salt, hash, nil
}
