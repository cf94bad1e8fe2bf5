package receiver

import "fmt"

// State is the lifecycle stage of a Receiver. A receiver only moves forward through the states.
type State int32

const (
	// StateStarting is the state while the device is prepared and the stream is opened.
	StateStarting State = iota
	// StateStreaming is the state while the acquisition loop runs.
	StateStreaming
	// StateDraining is the state after the loop exited and before the device was released.
	StateDraining
	// StateStopped is the final state.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
