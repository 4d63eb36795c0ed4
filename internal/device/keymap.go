package device

// Logical button bindings for the simulator. Physical mapping on real
// hardware is a driver concern; these are the key strings handleKey sees.
const (
	KeyQuit  = "q"
	KeyCtrlC = "ctrl+c"

	KeyShutter = " "   // capture-short
	KeyFocus   = "f"   // capture-long
	KeyLeft    = "left"
	KeyRight   = "right"
	KeyUp      = "up"
	KeyDown    = "down"
	KeySelect  = "tab"   // browse toggle in viewfinder, verbosity in viewing
	KeyConfirm = "enter" // re-analyze the selected saved image
	KeyBack    = "esc"   // cancel send, close viewer, leave browse
)
