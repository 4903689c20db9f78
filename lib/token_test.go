package lib

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "pack-electoral-premium", Slugify("Pack Électoral Premium"))
	assert.Equal(t, "realisation-d-ete", Slugify("Réalisation d'été"))
	assert.Equal(t, "a-b", Slugify("a --- b!!"))
	assert.Equal(t, "", Slugify("???"))
}

func TestGenerateEntityID(t *testing.T) {
	id, err := GenerateEntityID("Pack Argent")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^pack-argent-[a-z0-9]{4}$`), id)

	// Name with no usable characters falls back to a generic slug
	id, err = GenerateEntityID("!!!")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^bundle-[a-z0-9]{4}$`), id)
}

func TestGenerateEntityIDIsUnique(t *testing.T) {
	a, err := GenerateEntityID("Pack Or")
	require.NoError(t, err)
	b, err := GenerateEntityID("Pack Or")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
