package core

import "fmt"

// Direction is one of the four orthogonal travel directions
// Values match flow rotation order: 0°, 90°, 180°, 270°
type Direction int8

const (
	DirNone  Direction = -1
	DirUp    Direction = 0
	DirRight Direction = 1
	DirDown  Direction = 2
	DirLeft  Direction = 3
	DirCount           = 4
)

// Directions is the fixed neighbour expansion order used by every search
var Directions = [DirCount]Direction{DirUp, DirRight, DirDown, DirLeft}

// Direction vectors matching DirUp..DirLeft, Y grows downward
var dirVectors = [DirCount]Point{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// Valid reports whether d is one of the four travel directions
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirLeft
}

// Vector returns the unit offset for d, zero for DirNone
func (d Direction) Vector() Point {
	if !d.Valid() {
		return Point{}
	}
	return dirVectors[d]
}

// Opposite returns the direction rotated by 180°
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return DirNone
	}
	return (d + 2) % DirCount
}

// Degrees returns the flow rotation for d, -1 for DirNone
func (d Direction) Degrees() int {
	if !d.Valid() {
		return -1
	}
	return int(d) * 90
}

// DirectionFromDegrees maps 0/90/180/270 (any multiple of 360 offset) to a direction
func DirectionFromDegrees(deg int) (Direction, error) {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	if deg%90 != 0 {
		return DirNone, fmt.Errorf("rotation %d is not a multiple of 90", deg)
	}
	return Direction(deg / 90), nil
}

// DirectionBetween returns the direction of a single orthogonal hop from a to b
func DirectionBetween(a, b Point) Direction {
	for _, d := range Directions {
		if a.Step(d) == b {
			return d
		}
	}
	return DirNone
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "none"
	}
}
