package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierNewUUIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		id := IdentifierNewUUID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
