package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrInvalidCount        = errors.New("count is out of range")
	ErrUserNotFound        = errors.New("user not found")
	ErrLoginTaken          = errors.New("login is already taken")
)
