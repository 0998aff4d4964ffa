package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidForm        = errors.New("form has not been validated")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrInvalidSlug        = errors.New("slug may contain only letters, numbers, hyphens and underscores")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
