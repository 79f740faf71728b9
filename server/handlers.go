package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/navigation"
)

// FlowCell is one flowing path with its rotation in degrees (0 up, 90 right, 180 down, 270 left)
type FlowCell struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"`
}

// GridBody is the grid exchange format in layout notation
// Flows lists every flowing path; on replace it overrides the rows
type GridBody struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Revision uint64     `json:"revision"`
	Rows     []string   `json:"rows"`
	Flows    []FlowCell `json:"flows"`
}

// RouteResponse answers a debug route query
type RouteResponse struct {
	From       core.Point   `json:"from"`
	To         core.Point   `json:"to"`
	StrictFlow bool         `json:"strictFlow"`
	Found      bool         `json:"found"`
	Route      []core.Point `json:"route"`
}

// DistanceResponse exports the walking distance field
type DistanceResponse struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	HasSources bool    `json:"hasSources"`
	Rows       [][]int `json:"rows"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Latest())
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.Snapshot())
}

func gridBody(g *grid.Grid) GridBody {
	flows := []FlowCell{}
	for _, p := range g.Points(grid.KindPath) {
		if path, ok := g.Tile(p).(grid.Path); ok && path.Flowing() {
			flows = append(flows, FlowCell{X: p.X, Y: p.Y, Rotation: path.Flow.Degrees()})
		}
	}
	return GridBody{Width: g.Width(), Height: g.Height(), Revision: g.Revision(), Rows: g.Rows(), Flows: flows}
}

// applyFlows sets the rotation of each listed cell, which must be a path
func applyFlows(g *grid.Grid, flows []FlowCell) (*grid.Grid, error) {
	if len(flows) == 0 {
		return g, nil
	}
	b := g.Edit()
	for _, f := range flows {
		p := core.Pt(f.X, f.Y)
		if g.Tile(p).Kind() != grid.KindPath {
			return nil, errors.Errorf("flow at %v: not a path cell", p)
		}
		d, err := core.DirectionFromDegrees(f.Rotation)
		if err != nil {
			return nil, errors.Wrapf(err, "flow at %v", p)
		}
		b.Set(p, grid.FlowPath(d))
	}
	return b.Build(), nil
}

func (s *Server) handleGetGrid(c *gin.Context) {
	var body GridBody
	s.sched.View(func(sim *engine.Simulation) {
		body = gridBody(sim.Grid())
	})
	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePutGrid(c *gin.Context) {
	var req struct {
		Rows  []string   `json:"rows"`
		Flows []FlowCell `json:"flows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, err := grid.ParseRows(req.Rows)
	if err != nil {
		badRequest(c, err)
		return
	}
	if g, err = applyFlows(g, req.Flows); err != nil {
		badRequest(c, err)
		return
	}
	s.sched.ReplaceGrid(g)
	c.JSON(http.StatusOK, gridBody(g))
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Config())
}

// handlePutConfig merges the body over the current config, omitted fields keep their values
func (s *Server) handlePutConfig(c *gin.Context) {
	cfg := s.sched.Config()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.sched.UpdateConfig(cfg); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleStep(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Step())
}

func (s *Server) handleReset(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Reset())
}

func queryInt(c *gin.Context, key string) (int, error) {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0, errors.Errorf("query %s: want integer, got %q", key, c.Query(key))
	}
	return v, nil
}

func (s *Server) handleRoute(c *gin.Context) {
	var coords [4]int
	for i, key := range []string{"fx", "fy", "tx", "ty"} {
		v, err := queryInt(c, key)
		if err != nil {
			badRequest(c, err)
			return
		}
		coords[i] = v
	}
	resp := RouteResponse{From: core.Pt(coords[0], coords[1]), To: core.Pt(coords[2], coords[3])}
	s.sched.View(func(sim *engine.Simulation) {
		resp.StrictFlow = sim.Config().StrictFlow
		resp.Route = navigation.FindRoute(sim.Grid(), resp.From, resp.To, resp.StrictFlow)
	})
	resp.Found = len(resp.Route) > 0
	if resp.Route == nil {
		resp.Route = []core.Point{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDistance(c *gin.Context) {
	var resp DistanceResponse
	s.sched.View(func(sim *engine.Simulation) {
		f := sim.Distances()
		resp = DistanceResponse{Width: f.Width, Height: f.Height, HasSources: f.HasSources(), Rows: f.Rows()}
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	initial, err := encode(MsgState, s.sched.Latest())
	if err != nil {
		conn.Close()
		return
	}
	s.hub.serve(conn, initial)
}
