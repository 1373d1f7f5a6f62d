package receiver

// State is a step of the receiver lifecycle
type State int32

const (
	StateIdle State = iota
	StateConfigLoaded
	StateConnected
	StateReceiving
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigLoaded:
		return "config-loaded"
	case StateConnected:
		return "connected"
	case StateReceiving:
		return "receiving"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
