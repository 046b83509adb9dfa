package domain

import "errors"

// Admission errors
var (
	ErrAlreadyAdmitted = errors.New("email is already admitted")
	ErrNotAdmitted     = errors.New("email is not admitted")
)

// User errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyNickname = errors.New("nickname must not be empty")
	ErrEmptyEmail    = errors.New("email must not be empty")
)
