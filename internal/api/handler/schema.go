package handler

import (
	"time"

	"github.com/vytalle/storefront/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	User      domain.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type sessionResponse struct {
	User      domain.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// productListResponse items are shaped by the caller's role: public,
// vendor (with your_commission) or admin (with *_original prices).
type productListResponse struct {
	Items []domain.ProductView `json:"items"`
	Count int                  `json:"count"`
}
