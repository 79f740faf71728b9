package grid

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lixenwraith/parksim/core"
)

// Layout notation runes, one per cell
const (
	RuneWall        = '#'
	RuneOpenPath    = '.'
	RuneFlowUp      = '^'
	RuneFlowRight   = '>'
	RuneFlowDown    = 'v'
	RuneFlowLeft    = '<'
	RuneStandard    = 'P'
	RuneCompact     = 'c'
	RuneEV          = 'e'
	RuneDisabled    = 'd'
	RuneReserved    = 'r'
	RuneEntry       = 'E'
	RuneExit        = 'X'
	RuneDestination = 'M'
)

var flowRunes = [core.DirCount]rune{RuneFlowUp, RuneFlowRight, RuneFlowDown, RuneFlowLeft}

var spotRunes = [spotTypeCount]rune{RuneStandard, RuneCompact, RuneEV, RuneDisabled, RuneReserved}

// ErrRaggedLayout is returned when layout rows differ in length
var ErrRaggedLayout = errors.New("layout rows have different lengths")

// TileFromRune decodes a single layout rune
func TileFromRune(r rune) (Tile, bool) {
	switch r {
	case RuneWall:
		return Wall{}, true
	case RuneOpenPath:
		return OpenPath(), true
	case RuneEntry:
		return Entry{}, true
	case RuneExit:
		return Exit{}, true
	case RuneDestination:
		return Destination{}, true
	}
	for d, fr := range flowRunes {
		if r == fr {
			return FlowPath(core.Direction(d)), true
		}
	}
	for s, sr := range spotRunes {
		if r == sr {
			return Parking{Spot: SpotType(s)}, true
		}
	}
	return nil, false
}

// RuneFor encodes a tile as its layout rune
func RuneFor(t Tile) rune {
	switch v := t.(type) {
	case Path:
		if v.Flowing() {
			return flowRunes[v.Flow]
		}
		return RuneOpenPath
	case Parking:
		if v.Spot < spotTypeCount {
			return spotRunes[v.Spot]
		}
		return RuneStandard
	case Entry:
		return RuneEntry
	case Exit:
		return RuneExit
	case Destination:
		return RuneDestination
	default:
		return RuneWall
	}
}

// ParseRows builds a grid from layout notation, row 0 is the top
func ParseRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return Empty(), nil
	}
	width := utf8.RuneCountInString(rows[0])
	if width == 0 {
		return Empty(), nil
	}

	b := NewBuilder(width, len(rows))
	for y, row := range rows {
		if utf8.RuneCountInString(row) != width {
			return nil, errors.Wrapf(ErrRaggedLayout, "row %d has %d cells, want %d", y, utf8.RuneCountInString(row), width)
		}
		x := 0
		for _, r := range row {
			t, ok := TileFromRune(r)
			if !ok {
				return nil, errors.Errorf("unknown layout rune %q at (%d,%d)", r, x, y)
			}
			b.Set(core.Pt(x, y), t)
			x++
		}
	}
	return b.Build(), nil
}

// MustParse is ParseRows for fixtures known to be valid
func MustParse(rows ...string) *Grid {
	g, err := ParseRows(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows renders the grid in layout notation; edges and masks are not representable
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		sb.Reset()
		for x := 0; x < g.width; x++ {
			sb.WriteRune(RuneFor(g.Tile(core.Pt(x, y))))
		}
		rows[y] = sb.String()
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}
