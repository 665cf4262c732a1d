// Package response computes plot data for a biquad cascade: Bode magnitude
// and phase on a linear frequency grid, and the FFT spectrum of the
// cascade's impulse response.
package response
