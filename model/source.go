package model

// SourceKind distinguishes the two kinds of observable targets the
// engine knows how to point at.
type SourceKind string

const (
	// SourceSidereal is a celestial radio source at fixed equatorial
	// coordinates (the usual VLBI target: quasars, ICRF objects).
	SourceSidereal SourceKind = "SIDEREAL"
	// SourceSatellite is an Earth-orbiting target described by a TLE set.
	SourceSatellite SourceKind = "SATELLITE"
)

// Source describes one observable target. For sidereal sources RA and Dec
// are populated; for satellite sources the two TLE lines are.
type Source struct {
	ID   string
	Name string
	Kind SourceKind

	// RA and Dec are equatorial coordinates in radians (sidereal sources).
	RA  float64
	Dec float64

	// TLE1 and TLE2 are the two-line element lines (satellite sources).
	TLE1 string
	TLE2 string
}
