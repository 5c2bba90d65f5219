// Package gameid generates the identifiers handed out for tables and client
// sessions: UUIDv7 values rendered as 26-character lowercase Crockford base32.
package gameid

import (
	"encoding/base32"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates ids. A nil reader uses crypto/rand.
type Generator struct {
	mu     sync.Mutex
	reader io.Reader
}

// NewGenerator creates a generator drawing randomness from r
func NewGenerator(r io.Reader) *Generator {
	return &Generator{reader: r}
}

// New creates a new id. Ids sort by creation time.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var (
		id  uuid.UUID
		err error
	)
	if g.reader != nil {
		id, err = uuid.NewV7FromReader(g.reader)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate id: " + err.Error())
	}
	return encoding.EncodeToString(id[:])
}

// Validate checks that id decodes to a version 7 UUID
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("id must be exactly 26 characters, got %d", len(id))
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	parsed, err := uuid.FromBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	if parsed.Version() != 7 {
		return fmt.Errorf("id %q is not a v7 uuid", id)
	}
	return nil
}

// Short returns the first eight characters, used in default table names
func Short(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
