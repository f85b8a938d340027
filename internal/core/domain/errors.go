package domain

import "net/http"

// AuthenticationError is returned when a credential check fails. Its message
// is shown to users verbatim.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// StatusCode lets the resilience classifier treat it as an AUTH failure.
func (e *AuthenticationError) StatusCode() int { return http.StatusUnauthorized }

// AuthorizationError is returned by the session guards.
type AuthorizationError struct {
	Message string
	Status  int
}

func (e *AuthorizationError) Error() string { return e.Message }

func (e *AuthorizationError) StatusCode() int { return e.Status }

var (
	// ErrInvalidCredentials covers unknown email, inactive user and wrong
	// password alike so account existence is never revealed.
	ErrInvalidCredentials = &AuthenticationError{Message: "Email ou senha incorretos"}

	ErrLoginRequired = &AuthorizationError{Message: "Acesso negado. Faça login primeiro.", Status: http.StatusUnauthorized}
	ErrAdminRequired = &AuthorizationError{Message: "Acesso negado. Apenas administradores.", Status: http.StatusForbidden}
)

// NotFoundError is a lookup miss. It reports 404 so retries never fire on it.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

var (
	ErrUserNotFound    = &NotFoundError{What: "user"}
	ErrProductNotFound = &NotFoundError{What: "product"}
)
