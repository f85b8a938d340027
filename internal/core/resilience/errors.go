package resilience

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind is the closed failure taxonomy. Every error classifies to
// exactly one kind.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "NETWORK"
	KindAuth       ErrorKind = "AUTH"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindServer     ErrorKind = "SERVER"
	KindClient     ErrorKind = "CLIENT"
	KindValidation ErrorKind = "VALIDATION"
	KindUnknown    ErrorKind = "UNKNOWN"
)

// Retryable reports whether failures of this kind are worth retrying.
func (k ErrorKind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// Severity is informational only; nothing branches on it.
func (k ErrorKind) Severity() string {
	switch k {
	case KindAuth, KindServer:
		return "high"
	case KindNetwork, KindNotFound:
		return "medium"
	case KindValidation, KindClient:
		return "low"
	default:
		return "unknown"
	}
}

// userMessages are shown to end users; raw error text never is.
var userMessages = map[ErrorKind]string{
	KindNetwork:    "Erro de conexão. Verifique sua internet e tente novamente.",
	KindAuth:       "Sessão expirada ou acesso negado. Faça login novamente.",
	KindNotFound:   "Recurso não encontrado.",
	KindServer:     "Erro no servidor. Tente novamente em alguns instantes.",
	KindClient:     "Erro na requisição. Verifique os dados enviados.",
	KindValidation: "Dados inválidos. Verifique as informações fornecidas.",
	KindUnknown:    "Erro inesperado. Tente novamente.",
}

// FormErrorMessage is returned by HandleFormError for anything that is not a
// validation failure.
const FormErrorMessage = "Erro ao processar formulário"

// ErrorContext describes where a failure happened. It feeds log fields,
// AppError details and derived operation ids.
type ErrorContext struct {
	Component string
	Action    string
	UserID    string
	Metadata  map[string]any
}

// OperationID derives a retry-tracking id from the context.
func (c ErrorContext) OperationID() string {
	parts := make([]string, 0, 2)
	if c.Component != "" {
		parts = append(parts, c.Component)
	}
	if c.Action != "" {
		parts = append(parts, c.Action)
	}
	if len(parts) == 0 {
		return "api_call"
	}
	return strings.Join(parts, ".")
}

// AppError is the single failure shape surfaced to callers. Values are
// built fresh for each failure and never mutated afterwards.
type AppError struct {
	Kind      ErrorKind
	Message   string
	Code      string
	Details   map[string]any
	Timestamp time.Time
	Retryable bool

	cause error
}

func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the underlying failure to errors.Is / errors.As.
func (e *AppError) Unwrap() error { return e.cause }

// NetworkError marks a transport-level failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network error: " + e.Op
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError carries an HTTP-style status from a remote source.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e *StatusError) StatusCode() int { return e.Status }

// ValidationError marks invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}
