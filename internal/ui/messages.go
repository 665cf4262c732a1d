package ui

// ProgressMsg reports how far a render has advanced.
type ProgressMsg struct {
	Frames          int     // frames processed so far
	Total           int     // frames to process
	GainReductionDB float64 // limiter gain at the end of the last block
}

// DoneMsg ends the render, successfully or not.
type DoneMsg struct {
	Err error
}
