package client

// State is the lifecycle state of a client connection
type State int32

const (
	// StateDisconnected means no connection exists, either never connected or closed
	StateDisconnected State = iota
	// StateConnectedIdle is the short phase after dialing while the writer and the
	// pending table are wired and before the reader runs
	StateConnectedIdle
	// StateConnectedRunning means requests can be created and answers are read
	StateConnectedRunning
	// StateFaulted means a read or write failed; pending requests were failed
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnectedIdle:
		return "Connected-Idle"
	case StateConnectedRunning:
		return "Connected-Running"
	case StateFaulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}
