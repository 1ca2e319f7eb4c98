package pkg

import (
	"crypto/rand"
	"encoding/base32"
	"strconv"
	"strings"
)

// RandString returns an n character room code drawn from the base32 alphabet (A-Z, 2-7).
func RandString(n int) string {
	b := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
	return code[:n]
}

// Atoi parses s, returning def for empty or malformed input.
func Atoi(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
