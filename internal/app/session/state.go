// Package session provides the recording/playback session controller.
package session

// State represents the session state.
type State int

const (
	StateIdle      State = iota // No active backend
	StateRecording              // Capture in progress
	StatePlaying                // Playback in progress
	StatePaused                 // Capture paused, recorder handle retained
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
