package device

// State is the single authoritative description of what the device is doing.
// Exactly one value exists, owned and mutated only by the Model.
type State int

const (
	StateViewfinder State = iota
	StateFocusing
	StateCapturing
	StateSending
	StateViewing
	StateBrowsing
	StateScreensaver
)

func (s State) String() string {
	switch s {
	case StateViewfinder:
		return "viewfinder"
	case StateFocusing:
		return "focusing"
	case StateCapturing:
		return "capturing"
	case StateSending:
		return "sending"
	case StateViewing:
		return "viewing"
	case StateBrowsing:
		return "browsing"
	case StateScreensaver:
		return "screensaver"
	default:
		return "unknown"
	}
}
