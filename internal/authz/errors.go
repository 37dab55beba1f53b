package authz

import "errors"

var (
	ErrRoleRequired    = errors.New("role is required")
	ErrUnknownRole     = errors.New("unknown role")
	ErrAdminIDRequired = errors.New("admin id is required")
	ErrUnavailable     = errors.New("authz service unavailable")
)
