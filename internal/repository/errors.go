package repository

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrStoryNotFound  = errors.New("travel story not found")
)
