package bot

// RouteKind names the destination an incoming update is dispatched to.
type RouteKind int

const (
	// RouteRejected means the sender is not a registered participant.
	RouteRejected RouteKind = iota
	// RouteUnsupported means the update carries non-text content.
	RouteUnsupported
	// RouteSession means an active bet session consumes the text.
	RouteSession
	// RouteCommand means the text matched a registered command.
	RouteCommand
	// RouteFallback means nothing claimed the text.
	RouteFallback
)

func (k RouteKind) String() string {
	switch k {
	case RouteRejected:
		return "rejected"
	case RouteUnsupported:
		return "unsupported"
	case RouteSession:
		return "session"
	case RouteCommand:
		return "command"
	case RouteFallback:
		return "fallback"
	}
	return "unknown"
}

// Classify decides where an update goes. Authorization wins over everything:
// an unknown sender is rejected even if the text looks like a command or a
// session is somehow active. Active sessions take text before commands, so
// a participant typing "2-1" mid-dialog never hits command parsing.
func Classify(authorized, isText, inSession, isCommand bool) RouteKind {
	switch {
	case !authorized:
		return RouteRejected
	case !isText:
		return RouteUnsupported
	case inSession:
		return RouteSession
	case isCommand:
		return RouteCommand
	default:
		return RouteFallback
	}
}
