package maps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

func TestParse(t *testing.T) {
	g, err := Parse(strings.NewReader("S.#\r\n.#.\r\n..E\n\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 0, Y: 0}, g.Start())
	assert.Equal(t, models.Position{X: 2, Y: 2}, g.Exit())
	assert.False(t, g.IsWalkable(models.Position{X: 1, Y: 1}))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("S..\n..E\n"), 3)
	assert.ErrorIs(t, err, ErrMapSize)

	_, err = Parse(strings.NewReader("S..\n...\n..E\n"), 4)
	assert.ErrorIs(t, err, ErrMapSize)

	_, err = Parse(strings.NewReader("S...\n...\n..E\n"), 3)
	assert.ErrorIs(t, err, ErrMapSize)

	_, err = Parse(strings.NewReader("...\n...\n..E\n"), 3)
	assert.ErrorIs(t, err, models.ErrGridMarker)

	_, err = Parse(strings.NewReader("S.E\n...\n..E\n"), 3)
	assert.ErrorIs(t, err, models.ErrGridMarker)
}

func TestLoadFile_DefaultMap(t *testing.T) {
	g, err := LoadFile("map1.txt", models.MapSize)
	require.NoError(t, err)
	assert.Equal(t, models.MapSize, g.Width())
	assert.True(t, g.IsWalkable(g.Start()))
	assert.True(t, g.IsWalkable(g.Exit()))
	assert.Greater(t, len(g.WalkableCells()), 100)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("does-not-exist.txt", models.MapSize)
	assert.Error(t, err)
}
