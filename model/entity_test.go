package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityHasSurfaceForm(t *testing.T) {
	entity := &Entity{
		Name:    "Jeffrey Epstein",
		Class:   ClassPerson,
		Aliases: []string{"Jeff Epstein", "Mr. Epstein"},
	}

	t.Run("Matches the canonical name", func(t *testing.T) {
		assert.True(t, entity.HasSurfaceForm("Jeffrey Epstein"))
	})

	t.Run("Matches case-insensitively", func(t *testing.T) {
		assert.True(t, entity.HasSurfaceForm("jeffrey epstein"))
		assert.True(t, entity.HasSurfaceForm("JEFF EPSTEIN"))
	})

	t.Run("Matches aliases", func(t *testing.T) {
		assert.True(t, entity.HasSurfaceForm("Mr. Epstein"))
	})

	t.Run("Unknown surface does not match", func(t *testing.T) {
		assert.False(t, entity.HasSurfaceForm("Epstein"))
		assert.False(t, entity.HasSurfaceForm(""))
	})
}

func TestEntitySurfaceForms(t *testing.T) {
	t.Run("Name comes first, then aliases", func(t *testing.T) {
		entity := &Entity{Name: "Bear Stearns", Aliases: []string{"Bear Stearns & Co"}}
		assert.Equal(t, []string{"Bear Stearns", "Bear Stearns & Co"}, entity.SurfaceForms())
	})

	t.Run("Entity without aliases returns only the name", func(t *testing.T) {
		entity := &Entity{Name: "Sarah Kellen"}
		assert.Equal(t, []string{"Sarah Kellen"}, entity.SurfaceForms())
	})
}
