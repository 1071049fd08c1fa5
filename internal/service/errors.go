package service

import "errors"

// Business-level errors. Handlers map these to HTTP status codes.
var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account banned")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrInvalidSecretCode  = errors.New("invalid secret code")
	ErrInvalidTOTPCode    = errors.New("invalid verification code")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrMediaNotFound      = errors.New("media not found")
	ErrPermanentAccount   = errors.New("permanent account cannot be modified")
	ErrNotAllowed         = errors.New("operation not allowed")
	ErrInvalidRole        = errors.New("invalid role")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeBlocked    = errors.New("file type not allowed")
	ErrFileInfected       = errors.New("file failed the virus scan")
)
