// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// SaltBytes is the number of random bytes in a generated salt.
const SaltBytes = 32

// Hasher names accepted by NewHasher.
const (
	HasherSHA256   = "sha256"
	HasherArgon2id = "argon2id"
)

const argon2Prefix = "$argon2id$"

// PasswordHasher salts, hashes, and verifies passwords.
type PasswordHasher interface {
	// GenerateSalt returns a new random salt as text.
	GenerateSalt() (string, error)

	// Hash derives the stored hash for password and salt. It is deterministic.
	Hash(password, salt string) (string, error)

	// Verify reports whether password and salt reproduce hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error for
	// a hash it cannot parse.
	Verify(password, salt, hash string) (bool, error)

	// NeedsUpgrade reports whether hash should be replaced on next login.
	NeedsUpgrade(hash string) bool
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (PasswordHasher, error) {
	switch strings.ToLower(name) {
	case "", HasherSHA256:
		return NewSHA256Hasher(), nil
	case HasherArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, oops.Code("AUTH_UNKNOWN_HASHER").With("hasher", name).Errorf("unknown password hasher %q", name)
	}
}

// generateSalt returns SaltBytes random bytes encoded as standard base64.
func generateSalt() (string, error) {
	buf := make([]byte, SaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func checkHashInputs(password, salt string) error {
	if password == "" {
		return validationError("password", "password cannot be empty")
	}
	if salt == "" {
		return oops.Code("AUTH_INVALID_SALT").Errorf("salt cannot be empty")
	}
	return nil
}

// SHA256Hasher stores hex(sha256(password || salt)).
// It is kept for compatibility with existing credential rows.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// GenerateSalt returns a new random salt.
func (h *SHA256Hasher) GenerateSalt() (string, error) {
	return generateSalt()
}

// Hash returns the lowercase hex digest of password followed by salt.
func (h *SHA256Hasher) Hash(password, salt string) (string, error) {
	if err := checkHashInputs(password, salt); err != nil {
		return "", err
	}
	return sha256Hex(password, salt), nil
}

// Verify recomputes the digest and compares it in constant time.
func (h *SHA256Hasher) Verify(password, salt, hash string) (bool, error) {
	if strings.HasPrefix(hash, argon2Prefix) {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("sha256 hasher cannot verify argon2id hashes")
	}
	if len(hash) != sha256.Size*2 {
		return false, oops.Code("AUTH_INVALID_HASH").With("length", len(hash)).Errorf("invalid sha256 hash length")
	}
	computed := sha256Hex(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(hash))) == 1, nil
}

// NeedsUpgrade is always false; sha256 is the configured scheme.
func (h *SHA256Hasher) NeedsUpgrade(_ string) bool {
	return false
}

func sha256Hex(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// Upper bounds accepted when parsing a stored argon2id hash.
const (
	maxArgon2Time   = 64
	maxArgon2Memory = 1 << 22 // KiB
)

// Argon2Params tunes the argon2id key derivation.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Params returns OWASP-recommended argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
	}
}

// Argon2idHasher derives keys with argon2id. The salt is stored in its own
// column, so the encoded hash carries only parameters and key:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<key>
//
// Legacy sha256 hex hashes still verify and report NeedsUpgrade.
type Argon2idHasher struct {
	params Argon2Params
	legacy *SHA256Hasher
}

// NewArgon2idHasher creates an Argon2idHasher with DefaultArgon2Params.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: DefaultArgon2Params(), legacy: NewSHA256Hasher()}
}

// NewArgon2idHasherWithParams creates an Argon2idHasher with custom parameters.
func NewArgon2idHasherWithParams(params Argon2Params) (*Argon2idHasher, error) {
	if params.Time == 0 || params.Memory == 0 || params.Threads == 0 || params.KeyLen < 16 {
		return nil, oops.Code("AUTH_INVALID_HASHER_PARAMS").
			With("time", params.Time).
			With("memory", params.Memory).
			With("threads", params.Threads).
			With("key_len", params.KeyLen).
			Errorf("invalid argon2id parameters")
	}
	return &Argon2idHasher{params: params, legacy: NewSHA256Hasher()}, nil
}

// GenerateSalt returns a new random salt.
func (h *Argon2idHasher) GenerateSalt() (string, error) {
	return generateSalt()
}

// Hash derives an argon2id key from password and salt.
func (h *Argon2idHasher) Hash(password, salt string) (string, error) {
	if err := checkHashInputs(password, salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), []byte(salt), h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return fmt.Sprintf(
		"%sv=%d$m=%d,t=%d,p=%d$%s",
		argon2Prefix,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks password against an argon2id or legacy sha256 hash.
func (h *Argon2idHasher) Verify(password, salt, hash string) (bool, error) {
	if !strings.HasPrefix(hash, argon2Prefix) {
		return h.legacy.Verify(password, salt, hash)
	}

	// "", "argon2id", "v=19", "m=..,t=..,p=..", key
	parts := strings.Split(hash, "$")
	if len(parts) != 5 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("AUTH_INVALID_HASH").With("version", version).Errorf("unsupported argon2 version")
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d out of range", threads)
	}
	if iterations == 0 || iterations > maxArgon2Time {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("time value %d out of range", iterations)
	}
	if memory == 0 || memory > maxArgon2Memory {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("memory value %d out of range", memory)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<10 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), []byte(salt), iterations, memory, uint8(threads), uint32(keyLen))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade reports true for legacy sha256 hashes.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, argon2Prefix)
}
