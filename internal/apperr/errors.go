package apperr

import "errors"

var (
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrPathTraversal      = errors.New("path escapes store root")
)
