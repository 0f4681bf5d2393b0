package model

import "errors"

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseRunNotFound   = errors.New("course run not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrEntitlementNotFound = errors.New("entitlement not found")
	ErrSlugAlreadyExists   = errors.New("url slug already exists")
	ErrInvalidPageLimit    = errors.New("page and limit must be positive")
	ErrInvalidSort         = errors.New("invalid sort parameter")
)
