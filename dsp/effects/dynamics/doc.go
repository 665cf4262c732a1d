// Package dynamics provides reusable non-I/O dynamics processors.
//
// Included processors:
//   - BrickwallLimiter: Look-ahead peak limiter with a linked gain across
//     channels. The program path is delayed by the attack time so the gain
//     reaches its target before an overshooting sample leaves the delay line.
package dynamics
