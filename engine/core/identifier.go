package core

import (
	"github.com/google/uuid"
)

// IdentifierNewUUID returns a globally unique string id for long-lived
// resources such as models and textures.
func IdentifierNewUUID() string {
	return uuid.New().String()
}
