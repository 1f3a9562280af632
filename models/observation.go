package models

// Vision is a square window of cells centred on the viewer, one string per row.
type Vision []string

// Size returns the side length of the window.
func (v Vision) Size() int { return len(v) }

// At returns the cell at offset (dx, dy) from the centre. Offsets outside the
// window read as walls.
func (v Vision) At(dx, dy int) byte {
	r := len(v) / 2
	x, y := r+dx, r+dy
	if y < 0 || y >= len(v) || x < 0 || x >= len(v[y]) {
		return CellWall
	}
	return v[y][x]
}

// Sound describes one audible shot relative to the listener.
type Sound struct {
	Direction string `json:"direction"`
	DX        int    `json:"dx"`
	DY        int    `json:"dy"`
	Distance  int    `json:"distance"`
}

// Observation is the read-only view an entity gets of the world for one tick.
type Observation struct {
	EntityID  string   `json:"entity_id"`
	HP        int      `json:"hp"`
	Ammo      int      `json:"ammo"`
	Tick      int      `json:"tick"`
	Position  Position `json:"position"`
	Vision    Vision   `json:"vision"`
	LastSound string   `json:"last_sound,omitempty"`
	Sounds    []Sound  `json:"sounds,omitempty"`
	Alive     bool     `json:"alive"`
	Won       bool     `json:"won"`
	GameOver  bool     `json:"game_over"`
}
