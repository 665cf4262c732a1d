// Package biquad provides second-order IIR section runtime primitives with
// click-free coefficient changes.
//
// A [Section] evaluates one second-order section in direct form I and keeps
// two feedback histories: one for the current coefficient set and one for the
// set it replaced. After [Section.SetCoefficients] both paths run in parallel
// for a short window and their outputs are cross-faded linearly, so parameter
// changes do not click. Each path may be hard-clipped to bound the output of
// momentarily unstable coefficients.
//
// [Chain] is an ordered series of sections for one channel.
//
// Sections are generic over the sample type; float32 and float64 are the two
// intended instantiations. [Coefficients] stay float64 so response and
// pole/zero analysis are unaffected by the processing precision.
package biquad
