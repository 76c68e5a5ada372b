package store

import "fmt"

type (
	DuplicateUsername struct {
		Username string
	}

	UserNotFound struct {
		Username string
		ID       int64
	}

	PostNotFound struct {
		ID int64
	}
)

func (d DuplicateUsername) Error() string {
	return fmt.Sprintf("username %v is already taken", d.Username)
}

func (u UserNotFound) Error() string {
	if u.Username != "" {
		return fmt.Sprintf("user %v not found", u.Username)
	}
	return fmt.Sprintf("user with id %v not found", u.ID)
}

func (p PostNotFound) Error() string {
	return fmt.Sprintf("post %v not found", p.ID)
}
