package resilience

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type statusCoder interface {
	StatusCode() int
}

// Classify maps any error onto the taxonomy. It is total: unrecognised
// errors, and nil, are KindUnknown.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}

	if isNetwork(err) {
		return KindNetwork
	}

	if status, ok := statusOf(err); ok {
		return kindForStatus(status)
	}

	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, redis.Nil) {
		return KindNotFound
	}

	var ves validator.ValidationErrors
	var ve *ValidationError
	if errors.As(err, &ves) || errors.As(err, &ve) {
		return KindValidation
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network"), strings.Contains(msg, "fetch"),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return KindNetwork
	case strings.Contains(msg, "validation"):
		return KindValidation
	}

	return KindUnknown
}

func isNetwork(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	// net.Error also covers *url.Error and context.DeadlineExceeded.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func statusOf(err error) (int, bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, true
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	case status >= http.StatusBadRequest:
		return KindClient
	default:
		return KindUnknown
	}
}
