// Package plugin wires the parameter store, the pole-zero cascade, the
// brickwall limiter and the level meter into a block processor with a
// host-style prepare/process life cycle.
package plugin
