package model

// Pointing is one antenna pointing: a sky direction at an instant, plus the
// physical axis coordinates it resolved to. Times are seconds since the
// session epoch. Angles are radians.
//
// A freshly computed pointing carries azimuth/elevation only; the cable-wrap
// disambiguation fills Axis1/Axis2 and sets Resolved. Pointings are value
// types: replace, don't edit, once they enter station history.
type Pointing struct {
	Time int

	Az float64
	El float64

	// Axis1 and Axis2 are the resolved physical axis coordinates. For a
	// wrapped axis they may differ from the raw azimuth by a multiple of
	// the wrap period.
	Axis1 float64
	Axis2 float64

	// Resolved reports whether Axis1/Axis2 have been filled in by a
	// disambiguation pass and verified against the axis limits.
	Resolved bool
}

// StationPosition is a station's location: ECEF coordinates in metres for
// baseline geometry plus geodetic latitude/longitude (radians, longitude
// positive east) and altitude (metres) for topocentric pointing.
type StationPosition struct {
	X float64
	Y float64
	Z float64

	Lat float64
	Lon float64
	Alt float64
}
