// Package level implements a per-channel RMS and peak-hold level meter
// whose readings can be polled from a display goroutine while the audio
// goroutine keeps analysing.
//
// The RMS reading is a mean-square power estimate; convert it with
// [core.LinearPowerToDB] for display. Peaks are linear magnitudes.
package level
