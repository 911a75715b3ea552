// Package utils provides general-purpose helper utilities used across the
// fitsync client: local id minting, clock abstraction, and HTTP client
// initialization.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// LocalIDPrefix tags identifiers minted on-device before the entity has ever
// been pushed. A prefixed id must only be sent to the remote as a create,
// never as an update.
const LocalIDPrefix = "local-"

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// NewLocalID mints a locally-tagged identifier for an entity created while
// offline or unauthenticated.
func (g *UUIDGenerator) NewLocalID() string {
	return LocalIDPrefix + g.Generate()
}

// IsLocalID reports whether id was minted on-device and has not yet been
// replaced by a server-assigned id.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
