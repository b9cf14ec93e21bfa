package optsim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// fwhmToSigma converts a full width at half maximum into a gaussian sigma.
const fwhmToSigma = 1 / 2.355

// Distance in mm between the primary vertex and the upstream black sheet.
const beamStandoff = 10.0

type Particle struct {
	Name string
	PDG  int
	Mass float64 // GeV/c^2
}

var particleTable = map[string]Particle{
	"pi+":    {"pi+", 211, 0.13957039},
	"pi-":    {"pi-", -211, 0.13957039},
	"mu+":    {"mu+", -13, 0.1056583755},
	"mu-":    {"mu-", 13, 0.1056583755},
	"e-":     {"e-", 11, 0.000510998950},
	"e+":     {"e+", -11, 0.000510998950},
	"proton": {"proton", 2212, 0.93827208816},
	"kaon+":  {"kaon+", 321, 0.493677},
	"kaon-":  {"kaon-", -321, 0.493677},
	"gamma":  {"gamma", 22, 0},
}

func FindParticle(name string) (Particle, error) {
	p, ok := particleTable[name]
	if !ok {
		return Particle{}, fmt.Errorf("%w: %q", ErrUnknownParticle, name)
	}
	return p, nil
}

// Primary is the beam particle of one event. Energy is the total energy in
// GeV, momentum in GeV/c and position in mm.
type Primary struct {
	EventID  int
	PDG      int
	Energy   float64
	Momentum r3.Vec
	Position r3.Vec
}

// BeamProfile is a finite table of transverse (x, y) vertex positions read
// once at start of run. Running out of entries is fatal.
type BeamProfile struct {
	positions [][2]float64
	next      int
}

func NewBeamProfile(positions [][2]float64) *BeamProfile {
	return &BeamProfile{positions: positions}
}

// LoadBeamProfile reads "x,y" rows in mm. Lines starting with # and a
// non-numeric header row are skipped.
func LoadBeamProfile(filename string) (*BeamProfile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var positions [][2]float64
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading beam profile %s: %w", filename, err)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if errX != nil || errY != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("reading beam profile %s: row %d: %w", filename, row, errors.Join(errX, errY))
		}
		positions = append(positions, [2]float64{x, y})
	}
	return NewBeamProfile(positions), nil
}

func (b *BeamProfile) Len() int {
	return len(b.positions)
}

func (b *BeamProfile) Remaining() int {
	return len(b.positions) - b.next
}

// Next returns the next position, or ErrBeamProfileExhausted.
func (b *BeamProfile) Next() (float64, float64, error) {
	if b.next >= len(b.positions) {
		return 0, 0, fmt.Errorf("%w after %d entries", ErrBeamProfileExhausted, len(b.positions))
	}
	p := b.positions[b.next]
	b.next++
	return p[0], p[1], nil
}

// BeamGenerator produces one primary per event: momentum smeared around
// the nominal value, direction +z, vertex upstream of the module.
type BeamGenerator struct {
	particle Particle
	momentum distuv.Normal
	z        float64
	profile  *BeamProfile
	eventID  int
}

// NewBeamGenerator builds a generator from the configuration. profile may be
// nil, in which case every vertex is on the beam axis.
func NewBeamGenerator(config Configuration, src rand.Source, profile *BeamProfile) (*BeamGenerator, error) {
	particle, err := FindParticle(config.Particle)
	if err != nil {
		return nil, err
	}
	p0 := config.Momentum
	return &BeamGenerator{
		particle: particle,
		momentum: distuv.Normal{
			Mu:    p0,
			Sigma: p0 * config.MomentumSpread * fwhmToSigma,
			Src:   src,
		},
		z:       -config.GelSizeZ/2 - config.TeflonThickness - config.BlackSheetThick - beamStandoff,
		profile: profile,
	}, nil
}

func (g *BeamGenerator) Particle() Particle {
	return g.particle
}

// Generate returns the primary of the next event.
func (g *BeamGenerator) Generate() (Primary, error) {
	var x, y float64
	if g.profile != nil {
		var err error
		x, y, err = g.profile.Next()
		if err != nil {
			return Primary{}, err
		}
	}
	p := g.momentum.Rand()
	m := g.particle.Mass

	primary := Primary{
		EventID:  g.eventID,
		PDG:      g.particle.PDG,
		Energy:   math.Sqrt(m*m + p*p),
		Momentum: r3.Vec{Z: p},
		Position: r3.Vec{X: x, Y: y, Z: g.z},
	}
	g.eventID++
	return primary, nil
}
