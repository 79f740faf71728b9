package core

import "testing"

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d, want Direction
	}{
		{DirUp, DirDown},
		{DirRight, DirLeft},
		{DirDown, DirUp},
		{DirLeft, DirRight},
		{DirNone, DirNone},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			if got := tt.d.Opposite(); got != tt.want {
				t.Errorf("%v.Opposite() = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestDirectionFromDegrees(t *testing.T) {
	tests := []struct {
		deg     int
		want    Direction
		wantErr bool
	}{
		{0, DirUp, false},
		{90, DirRight, false},
		{180, DirDown, false},
		{270, DirLeft, false},
		{360, DirUp, false},
		{-90, DirLeft, false},
		{45, DirNone, true},
	}
	for _, tt := range tests {
		got, err := DirectionFromDegrees(tt.deg)
		if (err != nil) != tt.wantErr {
			t.Errorf("DirectionFromDegrees(%d) error = %v, wantErr %v", tt.deg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DirectionFromDegrees(%d) = %v, want %v", tt.deg, got, tt.want)
		}
		if !tt.wantErr && got.Degrees() != ((tt.deg%360)+360)%360 {
			t.Errorf("%v.Degrees() = %d, want %d", got, got.Degrees(), tt.deg)
		}
	}
}

func TestDirectionBetween(t *testing.T) {
	origin := Pt(3, 3)
	for _, d := range Directions {
		if got := DirectionBetween(origin, origin.Step(d)); got != d {
			t.Errorf("DirectionBetween step %v = %v", d, got)
		}
	}
	if got := DirectionBetween(origin, Pt(4, 4)); got != DirNone {
		t.Errorf("diagonal DirectionBetween = %v, want none", got)
	}
}

func TestPointManhattanAndOrder(t *testing.T) {
	if got := Pt(0, 2).Manhattan(Pt(4, 0)); got != 6 {
		t.Errorf("Manhattan = %d, want 6", got)
	}
	if !Pt(5, 0).Less(Pt(0, 1)) {
		t.Error("row-major order: (5,0) should precede (0,1)")
	}
	if Pt(1, 1).Less(Pt(1, 1)) {
		t.Error("Less must be strict")
	}
}
