// package events implements the in-process broadcast channel that decouples
// independently mounted surfaces (CLI output, TUI badge/grid/modal) from the
// session and watchlist layers.
//
// Events form a closed union: every broadcast is an [Event] carrying a [Kind]
// tag plus the payload fields that kind defines. Constructors are the only
// supported way to build events, so listeners never guess payload shapes.
package events

import (
	"reelist/internal/models"
)

// Kind enumerates all broadcast kinds in the application.
type Kind int

const (
	Login Kind = iota
	Logout
	SessionExpired
	OpenAuth
	OpenProfile
	WatchlistAdded
	WatchlistRemoved
	Toast
	AvatarPreview
)

func (k Kind) String() string {
	switch k {
	case Login:
		return "login"
	case Logout:
		return "logout"
	case SessionExpired:
		return "session_expired"
	case OpenAuth:
		return "open_auth"
	case OpenProfile:
		return "open_profile"
	case WatchlistAdded:
		return "watchlist_added"
	case WatchlistRemoved:
		return "watchlist_removed"
	case Toast:
		return "toast"
	case AvatarPreview:
		return "avatar_preview"
	default:
		return ""
	}
}

// Toast severity levels.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
)

// Event is the tagged union delivered to subscribers. Only the fields
// belonging to Kind are populated.
type Event struct {
	Kind    Kind
	User    *models.User          // Login
	Item    *models.WatchlistItem // WatchlistAdded
	MovieID models.MovieID        // WatchlistRemoved
	Message string                // SessionExpired, OpenAuth, Toast
	Level   string                // Toast
	Mode    string                // OpenAuth ("login" or "signup")
	Preview string                // AvatarPreview URL, "" clears
}

// LoginEvent is the constructor for [Login].
func LoginEvent(user *models.User) Event {
	return Event{Kind: Login, User: user}
}

// LogoutEvent is the constructor for [Logout].
func LogoutEvent() Event {
	return Event{Kind: Logout}
}

// SessionExpiredEvent is the constructor for [SessionExpired].
func SessionExpiredEvent(message string) Event {
	return Event{Kind: SessionExpired, Message: message}
}

// OpenAuthEvent is the constructor for [OpenAuth].
func OpenAuthEvent(message, mode string) Event {
	return Event{Kind: OpenAuth, Message: message, Mode: mode}
}

// OpenProfileEvent is the constructor for [OpenProfile].
func OpenProfileEvent() Event {
	return Event{Kind: OpenProfile}
}

// AddedEvent is the constructor for [WatchlistAdded].
func AddedEvent(item models.WatchlistItem) Event {
	return Event{Kind: WatchlistAdded, Item: &item}
}

// RemovedEvent is the constructor for [WatchlistRemoved].
func RemovedEvent(movieID models.MovieID) Event {
	return Event{Kind: WatchlistRemoved, MovieID: movieID}
}

// ToastEvent is the constructor for [Toast].
func ToastEvent(message, level string) Event {
	return Event{Kind: Toast, Message: message, Level: level}
}

// AvatarPreviewEvent is the constructor for [AvatarPreview].
func AvatarPreviewEvent(url string) Event {
	return Event{Kind: AvatarPreview, Preview: url}
}
