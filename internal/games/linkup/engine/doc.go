// Package engine implements the connect-pairs board: grid generation, the
// two-turn path search, deadlock detection with automatic reshuffle, the
// single-selection match controller and time-weighted scoring.
//
// The package has no platform dependencies. Time comes from a Clock and
// randomness from a seeded *rand.Rand so every session is reproducible.
package engine
