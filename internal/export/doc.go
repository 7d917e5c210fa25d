// Package export writes sweep results as CSV.
//
// The file format is a header line T,U,M_rms followed by one row per ladder
// temperature in ascending order. Floats use the shortest of %e/%f at a
// fixed number of significant digits (6 by default).
package export
