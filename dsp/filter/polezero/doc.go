// Package polezero implements a four-stage pole-zero filter cascade.
//
// Each stage is a biquad built from one pole slot and one zero slot. A slot
// describes either a single real root or a complex-conjugate pair. Stage 0
// also carries the overall gain.
//
// Stage coefficients are derived from a parameter snapshot once per block
// and pass a stability gate before they reach the filters: a stage whose
// poles lie at or beyond the protection radius keeps its previous
// coefficients. See [Policy].
package polezero
