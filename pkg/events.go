package optsim

// Sensitive detector names.
const (
	DetectorPMT  = "pmt"
	DetectorMPPC = "mppc"
)

// EventRecord is everything written out for one event.
type EventRecord struct {
	RunNumber     int
	EventID       int
	Primary       *Primary
	Cerenkov      CerenkovCounts
	PmtHits       []DetectedHit
	MppcHits      []DetectedHit
	Error         bool
	ErrorMessages []string
}

// NumDetected counts detected photons over all sensors.
func (e *EventRecord) NumDetected() int {
	n := 0
	for _, hits := range [][]DetectedHit{e.PmtHits, e.MppcHits} {
		for _, h := range hits {
			if h.Detected {
				n++
			}
		}
	}
	return n
}

func (e *EventRecord) NumPhotons() int {
	return len(e.PmtHits) + len(e.MppcHits)
}

// Hits returns the hits of one detector.
func (e *EventRecord) Hits(detector string) []DetectedHit {
	switch detector {
	case DetectorPMT:
		return e.PmtHits
	case DetectorMPPC:
		return e.MppcHits
	}
	return nil
}
