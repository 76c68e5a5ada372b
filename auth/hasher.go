package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32

	// upper bounds accepted when reading parameters back from a stored hash
	maxMemory = 1024 * 1024
	maxTime   = 16
)

type (
	// Hasher produces salted argon2id hashes encoded in the PHC string
	// format: $argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>
	Hasher struct {
		Time    uint32
		Memory  uint32
		Threads uint8
	}
)

var (
	DefaultHasher = Hasher{Time: 1, Memory: 64 * 1024, Threads: 4}
)

// Hash never returns the same output twice for the same input. The only
// error is a failure to read from the system random source.
func (h Hasher) Hash(raw string) (string, error) {
	salt := make([]byte, saltLen)
	_, err := rand.Read(salt)
	if err != nil {
		return "", fmt.Errorf("auth: unable to read salt from random source, cause %w", err)
	}
	key := argon2.IDKey([]byte(raw), salt, h.Time, h.Memory, h.Threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether raw matches encoded. The parameters come from
// encoded itself, so hashes made with other settings still verify.
// A malformed hash is just a mismatch.
func (h Hasher) Verify(encoded, raw string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	if parts[2] != fmt.Sprintf("v=%d", version) {
		return false
	}
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if parts[3] != fmt.Sprintf("m=%d,t=%d,p=%d", memory, time, threads) {
		return false
	}
	if memory == 0 || memory > maxMemory || time == 0 || time > maxTime || threads == 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}
	actual := argon2.IDKey([]byte(raw), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
