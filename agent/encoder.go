package agent

import "catamaze/server/models"

// Feature vector layout.
const (
	VisionChannels     = 4
	MaxTrackedEntities = 10
	EntityFeatures     = 3
	SoundDirections    = 8

	SelfOffset   = models.VisionSize * models.VisionSize * VisionChannels
	EntityOffset = SelfOffset + 4
	SoundOffset  = EntityOffset + MaxTrackedEntities*EntityFeatures
	FeatureDim   = SoundOffset + SoundDirections
)

// entityScale normalises relative offsets and distances.
const entityScale = 10.0

var soundSlots = map[string]int{
	"north":     0,
	"northeast": 1,
	"east":      2,
	"southeast": 3,
	"south":     4,
	"southwest": 5,
	"west":      6,
	"northwest": 7,
}

// Encoder maps observations to fixed-length feature vectors.
type Encoder struct {
	Width  int
	Height int
}

func DefaultEncoder() Encoder { return Encoder{Width: models.MapSize, Height: models.MapSize} }

// Encode returns a FeatureDim vector for obs. Vision of an unexpected size
// encodes as zeros.
func (enc Encoder) Encode(obs *models.Observation) []float64 {
	f := make([]float64, FeatureDim)
	if obs == nil {
		return f
	}

	if obs.Vision.Size() == models.VisionSize {
		i := 0
		for _, row := range obs.Vision {
			for x := 0; x < models.VisionSize; x++ {
				var c byte = models.CellWall
				if x < len(row) {
					c = row[x]
				}
				f[i] = indicator(c == models.CellWall)
				f[i+1] = indicator(c == models.MarkSelf || c == models.MarkOther)
				f[i+2] = indicator(c == 'H' || c == 'A')
				f[i+3] = indicator(c == '*')
				i += VisionChannels
			}
		}
	}

	f[SelfOffset] = float64(obs.HP) / models.MaxHP
	f[SelfOffset+1] = float64(obs.Ammo) / models.MaxAmmo
	width, height := enc.Width, enc.Height
	if width <= 0 || height <= 0 {
		width, height = models.MapSize, models.MapSize
	}
	f[SelfOffset+2] = float64(obs.Position.X) / float64(width)
	f[SelfOffset+3] = float64(obs.Position.Y) / float64(height)

	for i, o := range VisibleEntities(obs.Vision) {
		if i == MaxTrackedEntities {
			break
		}
		base := EntityOffset + i*EntityFeatures
		f[base] = float64(o.DX) / entityScale
		f[base+1] = float64(o.DY) / entityScale
		f[base+2] = float64(o.Distance) / entityScale
	}

	for _, s := range obs.Sounds {
		if slot, ok := soundSlots[s.Direction]; ok {
			f[SoundOffset+slot] = 1
		}
	}
	return f
}

// Sighting is another entity seen in a vision window.
type Sighting struct {
	DX, DY   int
	Distance int
}

// VisibleEntities lists the other-entity markers of v in row-major order.
func VisibleEntities(v models.Vision) []Sighting {
	r := v.Size() / 2
	var out []Sighting
	for y, row := range v {
		for x := 0; x < len(row); x++ {
			if row[x] != models.MarkOther {
				continue
			}
			dx, dy := x-r, y-r
			out = append(out, Sighting{DX: dx, DY: dy, Distance: max(abs(dx), abs(dy))})
		}
	}
	return out
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
