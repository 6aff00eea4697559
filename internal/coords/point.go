package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPlane is the highest plane the game world exposes.
const MaxPlane = 3

// Point is a world tile: X/Y on the map, Plane is the floor level.
type Point struct {
	X     int
	Y     int
	Plane int
}

func (p Point) ToArray() [3]int { return [3]int{p.X, p.Y, p.Plane} }

func FromArray(a [3]int) Point { return Point{X: a[0], Y: a[1], Plane: a[2]} }

// Valid reports whether p can refer to a real tile. Events carrying invalid
// points are dropped before they reach a tracker.
func (p Point) Valid() bool {
	return p.X >= 0 && p.Y >= 0 && p.Plane >= 0 && p.Plane <= MaxPlane
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Plane)
}

func Parse(s string) (Point, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Point{}, false
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	plane, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return Point{}, false
	}
	return Point{X: x, Y: y, Plane: plane}, true
}

// Distance is the tile distance used by the game client: Chebyshev distance on
// the same plane, math.MaxInt across planes.
func Distance(a, b Point) int {
	if a.Plane != b.Plane {
		return math.MaxInt
	}
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func Within(a, b Point, radius int) bool {
	return Distance(a, b) <= radius
}
