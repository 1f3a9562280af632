package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

// openGrid returns an n x n grid with no walls, S at (0,0) and E at (n-1,n-1).
func openGrid(t *testing.T, n int) *models.Grid {
	t.Helper()
	rows := make([]string, n)
	for y := range rows {
		rows[y] = strings.Repeat(".", n)
	}
	rows[0] = "S" + rows[0][1:]
	rows[n-1] = rows[n-1][:n-1] + "E"
	g, err := models.NewGrid(rows)
	require.NoError(t, err)
	return g
}

func gridFrom(t *testing.T, rows ...string) *models.Grid {
	t.Helper()
	g, err := models.NewGrid(rows)
	require.NoError(t, err)
	return g
}

func addEntity(t *testing.T, w *models.World, id string, kind models.EntityKind, x, y int) *models.Entity {
	t.Helper()
	e := models.NewEntity(id, kind, models.Position{X: x, Y: y}, "")
	require.NoError(t, w.AddEntity(e))
	return e
}

func eventsOf(events []models.Event, typ models.EventType) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func advance(t *testing.T, en *Engine, w *models.World, agents map[string]Decider) *TickResult {
	t.Helper()
	res, err := en.Advance(w, agents)
	require.NoError(t, err)
	return res
}
