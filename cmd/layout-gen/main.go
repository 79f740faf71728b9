package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/layout"
)

func main() {
	def := layout.DefaultConfig()
	width := flag.Int("width", def.Width, "lot width in cells")
	aisles := flag.Int("aisles", def.Aisles, "number of two-way aisles")
	seed := flag.Int64("seed", def.Seed, "random seed (0 = time based)")
	disabled := flag.Int("disabled", def.Disabled, "disabled spots next to the destination")
	strict := flag.Bool("strict", false, "check reachability under strict flow")
	quiet := flag.Bool("q", false, "print only the layout rows")
	flag.Parse()

	cfg := def
	cfg.Width = *width
	cfg.Aisles = *aisles
	cfg.Seed = *seed
	cfg.Disabled = *disabled

	startT := time.Now()
	res := layout.Generate(cfg)
	dur := time.Since(startT)

	if *quiet {
		fmt.Println(res.Grid.String())
		return
	}

	fmt.Fprintf(os.Stderr, "Generated in %v\n", dur)
	fmt.Fprintf(os.Stderr, "Grid Dimensions: %dx%d\n", res.Grid.Width(), res.Grid.Height())
	fmt.Fprintf(os.Stderr, "Entry %v  Exit %v\n", res.Entry, res.Exit)
	for st := grid.SpotStandard; st <= grid.SpotReserved; st++ {
		fmt.Fprintf(os.Stderr, "  %-9s %d\n", st, res.Mix[st])
	}

	reachable, total := layout.Reachability(res.Grid, *strict)
	if reachable == total {
		fmt.Fprintf(os.Stderr, "Status: all %d spots reachable (strict=%v)\n", total, *strict)
	} else {
		fmt.Fprintf(os.Stderr, "Status: %d of %d spots reachable (strict=%v)\n", reachable, total, *strict)
	}

	fmt.Println(res.Grid.String())
}
