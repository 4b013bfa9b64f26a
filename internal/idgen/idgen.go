// Package idgen issues opaque 40-hex-char identifiers for games and players.
package idgen

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generator is an HMAC-SHA1 over the current time and a random nonce. It is safe for concurrent use.
type Generator struct {
	key []byte
	now func() time.Time
}

func New(key string) *Generator {
	return &Generator{key: []byte(key), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

func (g *Generator) New() string {
	mac := hmac.New(sha1.New, g.key)
	mac.Write([]byte(strconv.FormatInt(g.now().UnixNano(), 10)))
	mac.Write([]byte(uuid.NewString()))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether s has the shape of an issued identifier.
func Valid(s string) bool {
	if len(s) != sha1.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
