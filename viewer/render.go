// Package viewer draws a running simulation in the terminal
package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
)

// Canvas is the drawing surface; tcell.Screen satisfies it
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

var (
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleFlow    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleEntry   = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleExit    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDest    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleReserve = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

var spotStyles = map[grid.SpotType]tcell.Style{
	grid.SpotStandard: tcell.StyleDefault.Foreground(tcell.ColorTeal),
	grid.SpotCompact:  tcell.StyleDefault.Foreground(tcell.ColorOlive),
	grid.SpotEV:       tcell.StyleDefault.Foreground(tcell.ColorGreen),
	grid.SpotDisabled: tcell.StyleDefault.Foreground(tcell.ColorBlue),
	grid.SpotReserved: tcell.StyleDefault.Foreground(tcell.ColorMaroon),
}

var flowGlyphs = [core.DirCount]rune{'↑', '→', '↓', '←'}

// Vehicle glyphs by state
const (
	glyphEntering = '●'
	glyphParked   = '■'
	glyphExiting  = '◆'
	glyphTrail    = '∙'
)

// TileGlyph returns the rune and style for a cell
func TileGlyph(c grid.Cell) (rune, tcell.Style) {
	switch t := c.Tile.(type) {
	case grid.Path:
		if t.Flowing() {
			return flowGlyphs[t.Flow], styleFlow
		}
		if c.Mask != nil && c.Mask.Solid() > 0 {
			return '░', stylePath
		}
		return '·', stylePath
	case grid.Parking:
		return grid.RuneFor(t), spotStyles[t.Spot]
	case grid.Entry:
		return 'E', styleEntry
	case grid.Exit:
		return 'X', styleExit
	case grid.Destination:
		return 'M', styleDest
	}
	return '█', styleWall
}

func vehicleGlyph(st engine.State) rune {
	switch st {
	case engine.StateParking:
		return glyphParked
	case engine.StateExiting:
		return glyphExiting
	}
	return glyphEntering
}

// Render draws the grid, reservations, vehicles and the status line
func Render(cv Canvas, g *grid.Grid, snap engine.Snapshot, uptimeSec float64) {
	for i := 0; i < g.Size(); i++ {
		p := g.PointAt(i)
		r, st := TileGlyph(g.CellAt(i))
		cv.SetContent(p.X, p.Y, r, nil, st)
	}

	// Reserved but not yet reached spots
	for _, p := range snap.Occupied {
		if g.In(p) {
			r, _ := TileGlyph(g.CellAt(g.Index(p)))
			cv.SetContent(p.X, p.Y, r, nil, styleReserve)
		}
	}

	for _, v := range snap.Vehicles {
		style := tcell.StyleDefault.Foreground(tcell.GetColor(v.Color))
		for _, p := range v.Path {
			if g.In(p) {
				cv.SetContent(p.X, p.Y, glyphTrail, nil, style)
			}
		}
		cv.SetContent(v.X, v.Y, vehicleGlyph(v.State), nil, style.Bold(true))
	}

	drawText(cv, 0, g.Height()+1, StatusLine(snap, uptimeSec), styleStatus)
}

// StatusLine summarises the snapshot in one line
func StatusLine(snap engine.Snapshot, uptimeSec float64) string {
	a := snap.Analytics
	flags := ""
	if snap.Config.StrictFlow {
		flags += " STRICT"
	}
	if snap.Config.IsPaused {
		flags += " PAUSED"
	}
	if snap.Config.ShowDebug {
		flags += " DEBUG"
	}
	return fmt.Sprintf("tick %d  %.0fs  x%.2g  active %d  occ %d/%d (%.0f%%)  parked %d  exited %d%s",
		snap.Tick, uptimeSec, snap.Config.TimeScale, a.Active, a.Occupied, a.ParkingCells, a.OccupancyPct,
		a.TotalParked, a.TotalExited, flags)
}

func drawText(cv Canvas, x, y int, s string, style tcell.Style) {
	w, h := cv.Size()
	if y >= h {
		return
	}
	for _, r := range s {
		if x >= w {
			return
		}
		cv.SetContent(x, y, r, nil, style)
		x++
	}
}
