package core

// Equipment is a station's receiving-chain sensitivity description: system
// equivalent flux density per observing band, plus the minimum signal-to-noise
// ratio the station requires per band. The engine only stores and serves these
// values; SNR feasibility itself belongs to the external optimizer.
type Equipment struct {
	sefd   map[string]float64
	minSNR map[string]float64
}

// NewEquipment copies the provided tables. Nil maps are treated as empty.
func NewEquipment(sefd, minSNR map[string]float64) *Equipment {
	e := &Equipment{
		sefd:   make(map[string]float64, len(sefd)),
		minSNR: make(map[string]float64, len(minSNR)),
	}
	for band, v := range sefd {
		e.sefd[band] = v
	}
	for band, v := range minSNR {
		e.minSNR[band] = v
	}
	return e
}

// SEFD returns the system equivalent flux density for a band. ok is false
// when the band is not configured.
func (e *Equipment) SEFD(band string) (float64, bool) {
	v, ok := e.sefd[band]
	return v, ok
}

// MaxSEFD returns the largest configured SEFD across all bands, 0 when no
// band is configured.
func (e *Equipment) MaxSEFD() float64 {
	max := 0.0
	for _, v := range e.sefd {
		if v > max {
			max = v
		}
	}
	return max
}

// MinSNR returns the minimum required signal-to-noise ratio for a band.
// A band absent from the table is reported as ok=false; callers must guard
// the lookup rather than rely on a fallback value.
func (e *Equipment) MinSNR(band string) (float64, bool) {
	v, ok := e.minSNR[band]
	return v, ok
}

// Bands lists the configured SEFD bands.
func (e *Equipment) Bands() []string {
	out := make([]string, 0, len(e.sefd))
	for band := range e.sefd {
		out = append(out, band)
	}
	return out
}
