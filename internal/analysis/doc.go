// Package analysis derives thermodynamic quantities from a finished sweep.
//
//   - [SpecificHeat]: dU/dT per spin by finite differences
//   - [Susceptibility]: <M²>/(N·T) per spin from the RMS magnetization
//   - [Summarize]: specific heat and susceptibility peaks, limits of the ladder
//
// The infinite-lattice reference is Onsager's exact result [OnsagerTc].
package analysis
