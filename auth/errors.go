package auth

import (
	"errors"
	"fmt"
)

type (
	MissingUsername struct{}

	MissingPassword struct{}

	UsernameTaken struct {
		Username string
	}

	// InvalidCredentials carries which half of the pair was wrong.
	// Field is either "username" or "password".
	InvalidCredentials struct {
		Field string
	}

	userError interface {
		error
		userFacing()
	}
)

func (MissingUsername) Error() string { return "Username is required" }
func (MissingPassword) Error() string { return "Password is required" }

func (u UsernameTaken) Error() string {
	return fmt.Sprintf("User %v is already registered.", u.Username)
}

func (i InvalidCredentials) Error() string {
	return fmt.Sprintf("Incorrect %v.", i.Field)
}

func (MissingUsername) userFacing()    {}
func (MissingPassword) userFacing()    {}
func (UsernameTaken) userFacing()      {}
func (InvalidCredentials) userFacing() {}

// UserMessage returns the text to show the visitor when err is one of the
// errors they can fix themselves. Anything else reports false and should
// be handled as a server failure.
func UserMessage(err error) (string, bool) {
	var ue userError
	if errors.As(err, &ue) {
		return ue.Error(), true
	}
	return "", false
}
