package player

// Status is the controller's view of playback. The external player
// process can outlive a Stopped status briefly, since termination is
// asynchronous.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusStopped
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Ready"
	case StatusPlaying:
		return "Playing"
	case StatusStopped:
		return "Stopped"
	case StatusFinished:
		return "Finished"
	}
	return "Unknown"
}
