package optsim

import (
	"math/rand/v2"
	"time"
)

// UniformSource provides uniform draws in [0, 1).
type UniformSource interface {
	Float64() float64
}

// PCG stream selectors. Detection and beam draws never share a stream.
const (
	detectionStream uint64 = 0x6f707469636b7663
	beamStream      uint64 = 0x6265616d6b766331
)

// NewRunSource returns the detection stream for a sequential run.
func NewRunSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, detectionStream))
}

// NewEventSource returns a detection stream that only depends on the run seed
// and the event id, so parallel runs give the same decisions regardless of
// which worker handles the event.
func NewEventSource(seed uint64, eventID int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, mix64(detectionStream^uint64(eventID))))
}

// NewBeamSource returns the stream used for primary generation.
func NewBeamSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, beamStream))
}

// ResolveSeed returns seed, or a wall clock derived seed when seed is 0.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return mix64(uint64(time.Now().UnixNano()))
}

// splitmix64 finalizer
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
