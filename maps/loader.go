// Package maps reads maze files: one row per line, one character per cell,
// '#' wall, '.' open, 'S' start and 'E' exit.
package maps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catamaze/server/models"
)

var ErrMapSize = errors.New("map has the wrong dimensions")

// Parse reads a size x size map from r.
func Parse(r io.Reader, size int) (*models.Grid, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}

	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}

	if len(rows) != size {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrMapSize, len(rows), size)
	}
	for i, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMapSize, i, len(row), size)
		}
	}

	return models.NewGrid(rows)
}

// LoadFile parses the map stored at path.
func LoadFile(path string, size int) (*models.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map %s: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("invalid map %s: %w", path, err)
	}
	return g, nil
}
