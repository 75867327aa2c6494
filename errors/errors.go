package errors

import "fmt"

var (
	ErrEmptyMessage        = fmt.Errorf("message has neither text nor image")
	ErrUserNotFound        = fmt.Errorf("user not found")
	ErrUserAlreadyExists   = fmt.Errorf("user already exists")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrInvalidPassword     = fmt.Errorf("password does not meet complexity rules")
	ErrInvalidRegistration = fmt.Errorf("invalid registration request")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrUploadFailed        = fmt.Errorf("image upload failed")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
)
