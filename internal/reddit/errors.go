package reddit

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is wrapped by FetchError when Reddit has no such user.
var ErrUserNotFound = errors.New("user not found")

// FetchError reports a failure to load a user's content. It is fatal to a run.
type FetchError struct {
	Username string
	Op       string // about, submitted, comments, auth
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for user %s: %v", e.Op, e.Username, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
