// Package world provides the hexagonal reactor lattice: coordinates, tiles, and the grid.
// Uses skewed axial coordinates (r, q); the third cube coordinate is s = -r - q.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
type HexCoord struct {
	R int `json:"r"`
	Q int `json:"q"`
}

// Origin is the center tile of every reactor grid.
var Origin = HexCoord{}

// Cube is the cube form of an axial coordinate. Valid cubes satisfy R+Q+S == 0.
type Cube struct {
	R int `json:"r"`
	Q int `json:"q"`
	S int `json:"s"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{R: h.R + o.R, Q: h.Q + o.Q}
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.R, h.Q)
}

// AxialToCube converts an axial coordinate to cube form.
func AxialToCube(h HexCoord) Cube {
	return Cube{R: h.R, Q: h.Q, S: h.S()}
}

// CubeToAxial drops the derived s component.
func CubeToAxial(c Cube) HexCoord {
	return HexCoord{R: c.R, Q: c.Q}
}

// Valid reports whether the cube satisfies r + q + s == 0.
func (c Cube) Valid() bool {
	return c.R+c.Q+c.S == 0
}

// HexNeighborDirections defines the six neighbor offsets in axial (r, q) coordinates.
var HexNeighborDirections = [6]HexCoord{
	{R: -1, Q: 0},
	{R: -1, Q: 1},
	{R: 0, Q: -1},
	{R: 0, Q: 1},
	{R: 1, Q: -1},
	{R: 1, Q: 0},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates:
// half the L1 norm of their cube difference.
func Distance(a, b HexCoord) int {
	ca, cb := AxialToCube(a), AxialToCube(b)
	return (abs(ca.R-cb.R) + abs(ca.Q-cb.Q) + abs(ca.S-cb.S)) / 2
}

// RingCoordinates returns every coordinate within hex distance radius of center,
// 3*radius*radius + 3*radius + 1 of them. A negative radius yields nothing.
func RingCoordinates(center HexCoord, radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	coords := make([]HexCoord, 0, TileCount(radius))
	for r := -radius; r <= radius; r++ {
		for q := -radius; q <= radius; q++ {
			c := Cube{R: r, Q: q, S: -r - q}
			// Cube coordinate constraint: |s| <= radius.
			if abs(c.S) > radius {
				continue
			}
			coords = append(coords, CubeToAxial(c).Add(center))
		}
	}
	return coords
}

// TileCount is the closed-form number of tiles in a filled hexagon of the given ring radius.
func TileCount(radius int) int {
	if radius < 0 {
		return 0
	}
	return 3*radius*radius + 3*radius + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
