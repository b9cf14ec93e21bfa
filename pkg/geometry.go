package optsim

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// SAC module dimensions in mm.
const (
	SACSizeX       = 113.8
	SACSizeY       = 145.0
	FrameThickness = 10.0
	PmtSpacing     = 25.0
	PmtRadius      = 25.8
	PmtThickness   = 1.0
	NumSACPmts     = 14
)

// Placement is the position and orientation of one sensor copy. Local
// coordinates are Rotation applied to (world - Position).
type Placement struct {
	Copy     int
	Position r3.Vec
	Rotation *r3.Rotation
}

func (p Placement) ToLocal(world r3.Vec) r3.Vec {
	local := r3.Sub(world, p.Position)
	if p.Rotation != nil {
		local = p.Rotation.Rotate(local)
	}
	return local
}

// Layout maps sensor copy numbers to their placements.
type Layout struct {
	Name       string
	placements map[int]Placement
}

func NewLayout(name string, placements ...Placement) *Layout {
	l := &Layout{Name: name, placements: make(map[int]Placement, len(placements))}
	for _, p := range placements {
		l.placements[p.Copy] = p
	}
	return l
}

// NewSACLayout places the 14 SAC PMTs around the aerogel block, centred in z.
// Copies 0-2 sit on the left short side, 3-5 on the right, 6-9 on top and
// 10-13 at the bottom. Top and bottom PMTs sit on the teflon sheets.
func NewSACLayout(teflonThickness float64) *Layout {
	sideRotation := r3.NewRotation(math.Pi/2, r3.Vec{Y: 1})

	placements := make([]Placement, 0, NumSACPmts)
	sideX := SACSizeX/2 + FrameThickness + PmtThickness/2
	for i := 0; i < 3; i++ {
		dy := float64(i-1) * PmtSpacing
		placements = append(placements,
			Placement{Copy: i, Position: r3.Vec{X: -sideX, Y: dy}, Rotation: &sideRotation},
			Placement{Copy: i + 3, Position: r3.Vec{X: sideX, Y: dy}, Rotation: &sideRotation},
		)
	}
	topY := SACSizeY/2 + teflonThickness + PmtThickness/2
	for i := 0; i < 4; i++ {
		dx := (float64(i) - 1.5) * PmtSpacing
		placements = append(placements,
			Placement{Copy: i + 6, Position: r3.Vec{X: dx, Y: topY}},
			Placement{Copy: i + 10, Position: r3.Vec{X: dx, Y: -topY}},
		)
	}
	return NewLayout("SAC", placements...)
}

func (l *Layout) Placement(copyNo int) (Placement, bool) {
	p, ok := l.placements[copyNo]
	return p, ok
}

// Copies returns the copy numbers in increasing order.
func (l *Layout) Copies() []int {
	return slices.Sorted(maps.Keys(l.placements))
}

// ToLocal transforms a world position into the frame of sensor copyNo.
func (l *Layout) ToLocal(copyNo int, world r3.Vec) (r3.Vec, error) {
	p, ok := l.placements[copyNo]
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: %s has no copy %d", ErrUnknownDetector, l.Name, copyNo)
	}
	return p.ToLocal(world), nil
}

// IdentityMapping maps every copy number to itself; used when no database
// is available.
func (l *Layout) IdentityMapping() SensorMapping {
	m := NewSensorMapping()
	for _, c := range l.Copies() {
		m.Add(c, c)
	}
	return m
}
