package optsim

// SensitiveDetector digitizes the optical photons reaching one family of
// sensors. It owns the hit collection of the current event.
type SensitiveDetector struct {
	Name       string
	model      *PhotonDetectionModel
	layout     *Layout
	mapping    SensorMapping
	collection HitCollection
}

// NewSensitiveDetector builds a detector. When layout is nil local positions
// are left equal to world positions. Copies missing from mapping keep their
// copy number as sensor id.
func NewSensitiveDetector(name string, model *PhotonDetectionModel, layout *Layout, mapping SensorMapping) *SensitiveDetector {
	return &SensitiveDetector{
		Name:       name,
		model:      model,
		layout:     layout,
		mapping:    mapping,
		collection: HitCollection{Name: name},
	}
}

// SetSource makes the detector draw from src from now on.
func (sd *SensitiveDetector) SetSource(src UniformSource) {
	sd.model = sd.model.WithSource(src)
}

func (sd *SensitiveDetector) Model() *PhotonDetectionModel {
	return sd.model
}

func (sd *SensitiveDetector) Initialize(eventID int) {
	sd.collection.Reset(eventID)
}

// ProcessHits records one photon arrival. Steps of anything but optical
// photons are ignored and return false. For optical photons the return value
// is true and the caller stops and kills the track.
func (sd *SensitiveDetector) ProcessHits(step PhotonStep) (bool, error) {
	if step.PDG != OpticalPhotonPDG {
		return false, nil
	}
	// A copy missing from the layout is still digitized, with local equal to
	// world, and its error is returned after the hit is recorded.
	local := step.Position
	var err error
	if sd.layout != nil {
		if l, lerr := sd.layout.ToLocal(step.Copy, step.Position); lerr != nil {
			err = lerr
		} else {
			local = l
		}
	}
	hit := DetectedHit{
		PhotonHitCandidate: PhotonHitCandidate{
			EventID:    sd.collection.EventID,
			Detector:   sd.Name,
			Copy:       step.Copy,
			SensorID:   sd.mapping.SensorID(step.Copy),
			PDG:        step.PDG,
			Energy:     step.Energy,
			Wavelength: Wavelength(step.Energy),
			Time:       step.Time,
			World:      step.Position,
			Local:      local,
		},
		Detected: sd.model.Detect(step.Energy),
	}
	sd.collection.Add(hit)
	return true, err
}

// EndOfEvent hands over a copy of the collected hits. The collection itself
// is reused by the next event.
func (sd *SensitiveDetector) EndOfEvent() []DetectedHit {
	hits := make([]DetectedHit, len(sd.collection.Hits))
	copy(hits, sd.collection.Hits)
	return hits
}
