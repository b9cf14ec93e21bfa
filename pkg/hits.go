package optsim

import "gonum.org/v1/gonum/spatial/r3"

// hcEVnm is h*c in eV*nm.
const hcEVnm = 1239.84198

// OpticalPhotonPDG is the code the transport engine gives optical photons.
const OpticalPhotonPDG = -22

// Wavelength converts a photon energy in eV to a wavelength in nm.
func Wavelength(energy float64) float64 {
	return hcEVnm / energy
}

// PhotonHitCandidate is one photon arriving at a sensor.
type PhotonHitCandidate struct {
	EventID    int
	Detector   string
	Copy       int
	SensorID   int
	PDG        int
	Energy     float64 // eV
	Wavelength float64 // nm
	Time       float64 // ns
	World      r3.Vec  // mm
	Local      r3.Vec  // mm, sensor frame
}

type DetectedHit struct {
	PhotonHitCandidate
	Detected bool
}

// HitCollection holds the hits of one sensitive detector during one event.
type HitCollection struct {
	Name    string
	EventID int
	Hits    []DetectedHit
}

func (c *HitCollection) Add(hit DetectedHit) {
	c.Hits = append(c.Hits, hit)
}

func (c *HitCollection) Len() int {
	return len(c.Hits)
}

func (c *HitCollection) NumDetected() int {
	n := 0
	for _, h := range c.Hits {
		if h.Detected {
			n++
		}
	}
	return n
}

// Reset empties the collection for a new event, keeping its storage.
func (c *HitCollection) Reset(eventID int) {
	c.EventID = eventID
	c.Hits = c.Hits[:0]
}
