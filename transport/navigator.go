package transport

import "strings"

// Navigator moves the user interface. The transport only ever sends it to the
// login entry point after a failed refresh.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// SessionObserver is told how each refresh settled.
type SessionObserver interface {
	TokenRefreshed(accessToken string)
	SessionExpired(err error)
}

// NavigatorFunc adapts a plain function to a Navigator that never reports a
// current path.
type NavigatorFunc func(path string)

func (f NavigatorFunc) CurrentPath() string { return "" }
func (f NavigatorFunc) Navigate(path string) { f(path) }

func onPath(current, path string) bool {
	if i := strings.IndexAny(current, "?#"); i >= 0 {
		current = current[:i]
	}
	return strings.TrimSuffix(current, "/") == strings.TrimSuffix(path, "/")
}
