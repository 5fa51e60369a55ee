package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitPrice_MappedNames(t *testing.T) {
	assert.Equal(t, 10, UnitPrice("Rick Sanchez"))
	assert.Equal(t, 10, UnitPrice("Morty Smith"))
}

func TestUnitPrice_UnmappedNamesSellAtDefault(t *testing.T) {
	assert.Equal(t, 5, UnitPrice("Summer Smith"))
	assert.Equal(t, 5, UnitPrice("Birdperson"))
	assert.Equal(t, 5, UnitPrice(""))
}
