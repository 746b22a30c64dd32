package errors

import "fmt"

var (
	ErrUnauthenticated    = fmt.Errorf("connection has no verified identity")
	ErrUserNotFound       = fmt.Errorf("user not found or offline")
	ErrMatchNotFound      = fmt.Errorf("match not found")
	ErrInviterGone        = fmt.Errorf("inviter is no longer connected")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidPayload     = fmt.Errorf("invalid event payload")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
