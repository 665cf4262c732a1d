// Package param defines the named, bounded parameters of the pole-zero
// filter and a lock-free store for them.
//
// The control context writes parameters with [Store.Set]; the audio context
// reads them through the read-only [Reader] interface, one atomic load per
// parameter per block. Reads of different parameters may observe different
// generations; consumers must tolerate that skew.
//
// Change notifications for a UI refresh layer are delivered over channels
// returned by [Store.Subscribe]. Sends never block the writer; a subscriber
// that falls behind misses intermediate values but always sees later ones.
package param
