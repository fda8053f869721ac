package device

// State is the device's position in the login/authentication lifecycle.
type State int

const (
	Unregistered State = iota
	Registered
	LoggedIn
	LoggedOut
	// Authenticated is reachable only from LoggedIn, after a successful
	// handshake.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "UNREGISTERED"
	case Registered:
		return "REGISTERED"
	case LoggedIn:
		return "LOGGED_IN"
	case LoggedOut:
		return "LOGGED_OUT"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

func (s State) loggedIn() bool {
	return s == LoggedIn || s == Authenticated
}
