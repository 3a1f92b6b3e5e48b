// Package units provides shared constants and conversions for board length units.
//
// All geometry inside copperline is expressed in millimetres as float64.
// The host editor's automation interface exchanges coordinates as integer
// nanometres; the hostbridge package converts at the boundary using the
// helpers here.
package units

import "math"

// NanometresPerMillimetre is the host editor's internal unit scale.
const NanometresPerMillimetre = 1_000_000

// GridUnit is the finest routing grid step, in millimetres (1 µm).
// Width nudges applied by the neckdown cutter are exactly one grid unit
// so that split segments stay numerically distinct.
const GridUnit = 0.001

// Tolerance is the coordinate comparison tolerance in millimetres.
// One nanometre: anything closer than the host's unit resolution is
// treated as coincident.
const Tolerance = 1e-6

// MillimetresFromNanometres converts a wire coordinate to millimetres.
func MillimetresFromNanometres(nm int64) float64 {
	return float64(nm) / NanometresPerMillimetre
}

// NanometresFromMillimetres converts millimetres to the nearest wire unit.
func NanometresFromMillimetres(mm float64) int64 {
	return int64(math.Round(mm * NanometresPerMillimetre))
}

// Coincident reports whether two lengths are equal within Tolerance.
func Coincident(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}
