package core

import "fmt"

// Point is a grid coordinate, X is the column and Y is the row
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Step returns the neighbour of p in direction d
func (p Point) Step(d Direction) Point {
	v := d.Vector()
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Manhattan returns the L1 distance between p and q
func (p Point) Manhattan(q Point) int {
	dx := p.X - q.X
	dy := p.Y - q.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Adjacent reports whether q is one orthogonal hop from p
func (p Point) Adjacent(q Point) bool {
	return p.Manhattan(q) == 1
}

// Less orders points row-major, matching grid scan order
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
