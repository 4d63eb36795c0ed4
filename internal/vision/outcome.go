package vision

import "time"

// Status tags the terminal result of one analysis request.
type Status int

const (
	StatusSuccess Status = iota
	StatusCancelled
	StatusFailed
)

// ErrKind distinguishes transport failures so the device can message the
// operator accurately.
type ErrKind int

const (
	// ErrNone means the outcome carries no error.
	ErrNone ErrKind = iota
	// ErrNetwork covers connection errors and per-attempt timeouts. These
	// were retried before being surfaced.
	ErrNetwork
	// ErrService covers HTTP error statuses from the analysis service.
	ErrService
	// ErrDecode covers well-formed HTTP responses whose body does not carry
	// analysis text where expected.
	ErrDecode
)

func (k ErrKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrService:
		return "service"
	case ErrDecode:
		return "decode"
	default:
		return "none"
	}
}

// Outcome is produced exactly once per analysis request.
type Outcome struct {
	Status  Status
	Text    string        // analysis text, set on success
	Elapsed time.Duration // wall time of the whole request including retries
	Kind    ErrKind       // set on failure
	Message string        // short operator-facing failure description
}
