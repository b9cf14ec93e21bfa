package optsim

const (
	ProcessCerenkov      = "Cerenkov"
	ProcessScintillation = "Scintillation"
)

// NewTrack is an optical photon secondary reported by the transport engine
// when it is created.
type NewTrack struct {
	EventID int
	Process string
	Volume  string
}

type CerenkovCounts struct {
	CerenkovAll    int
	CerenkovQuartz int
	Scintillation  int
}

// CerenkovCounter counts optical photons by creator process during one
// event. Photons born in the quartz volume are counted separately.
type CerenkovCounter struct {
	quartzVolume string
	counts       CerenkovCounts
}

func NewCerenkovCounter(quartzVolume string) *CerenkovCounter {
	return &CerenkovCounter{quartzVolume: quartzVolume}
}

func (c *CerenkovCounter) PrepareNewEvent() {
	c.counts = CerenkovCounts{}
}

func (c *CerenkovCounter) ClassifyNewTrack(track NewTrack) {
	switch track.Process {
	case ProcessScintillation:
		c.counts.Scintillation++
	case ProcessCerenkov:
		c.counts.CerenkovAll++
		if track.Volume == c.quartzVolume {
			c.counts.CerenkovQuartz++
		}
	}
}

func (c *CerenkovCounter) Counts() CerenkovCounts {
	return c.counts
}
