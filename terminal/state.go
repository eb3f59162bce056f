package terminal

// State describes the lifecycle of the supervised terminal process.
type State int

// Process states
const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "Running"
	}
	return "Idle"
}
