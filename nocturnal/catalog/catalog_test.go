package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NormalizeCategory(t *testing.T) {

	t.Parallel()

	normalized, known := NormalizeCategory("nocturnal", "night skies")
	assert.True(t, known)
	assert.Equal(t, "Night Skies", normalized)

	normalized, known = NormalizeCategory("nocturnal", "URBAN NIGHTS")
	assert.True(t, known)
	assert.Equal(t, "Urban Nights", normalized)

	normalized, known = NormalizeCategory("ambientlab", "field recordings")
	assert.True(t, known)
	assert.Equal(t, "Field Recordings", normalized)

	// unrecognized labels are kept, not rejected
	normalized, known = NormalizeCategory("nocturnal", "Midnight Cooking")
	assert.False(t, known)
	assert.Equal(t, "Midnight Cooking", normalized)

	// categories do not leak across brand skins
	_, known = NormalizeCategory("ambientlab", "Night Skies")
	assert.False(t, known)

	_, known = NormalizeCategory("unknown-brand", "Dreams")
	assert.False(t, known)
}
