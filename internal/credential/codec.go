package credential

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// SealedPrefix marks a key file encrypted with a passphrase.
const SealedPrefix = "daytask-sealed-v1:"

const (
	shift    = 5
	saltSize = 16
	keySize  = 32
	nonceLen = 24

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrDecode is returned when key file content cannot be decoded.
var ErrDecode = errors.New("invalid key file")

// Obfuscate shifts every character of key up by 5 and base64-encodes the
// result, one byte per character. This is NOT encryption: anyone holding
// the output can recover the key.
func Obfuscate(key string) (string, error) {
	buf := make([]byte, 0, len(key))
	for _, r := range key {
		c := r + shift
		if c > 0xFF {
			return "", fmt.Errorf("cannot obfuscate character %q", r)
		}
		buf = append(buf, byte(c))
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Deobfuscate reverses Obfuscate.
func Deobfuscate(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var b strings.Builder
	for _, c := range raw {
		if c < shift {
			return "", fmt.Errorf("%w: byte out of range", ErrDecode)
		}
		b.WriteRune(rune(c - shift))
	}
	return b.String(), nil
}

// Seal encrypts key with a key derived from passphrase (scrypt) using
// NaCl secretbox. The output is SealedPrefix followed by base64 of
// salt, nonce and box.
func Seal(key, passphrase string) (string, error) {
	if passphrase == "" {
		return "", errors.New("passphrase required")
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	k, err := deriveKey(passphrase, salt)
	if err != nil {
		return "", err
	}

	out := append([]byte{}, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, []byte(key), &nonce, k)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. A wrong passphrase or tampered content yields
// ErrDecode.
func Open(s, passphrase string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, SealedPrefix) {
		return "", fmt.Errorf("%w: not a sealed key", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) < saltSize+nonceLen+secretbox.Overhead {
		return "", fmt.Errorf("%w: too short", ErrDecode)
	}

	salt := raw[:saltSize]
	var nonce [nonceLen]byte
	copy(nonce[:], raw[saltSize:saltSize+nonceLen])
	k, err := deriveKey(passphrase, salt)
	if err != nil {
		return "", err
	}

	plain, ok := secretbox.Open(nil, raw[saltSize+nonceLen:], &nonce, k)
	if !ok {
		return "", fmt.Errorf("%w: wrong passphrase or damaged file", ErrDecode)
	}
	return string(plain), nil
}

// IsSealed reports whether s was produced by Seal.
func IsSealed(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), SealedPrefix)
}

func deriveKey(passphrase string, salt []byte) (*[keySize]byte, error) {
	dk, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var k [keySize]byte
	copy(k[:], dk)
	return &k, nil
}
