package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/response"
)

// renderError maps a service-layer error onto the HTTP surface. Business
// failures keep their detail; storage failures are reported opaquely.
func renderError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	var nfErr *services.NotFoundError
	var stockErr *services.InsufficientStockError
	var cErr *services.ConflictError

	switch {
	case errors.As(err, &vErr):
		response.ValidationError(w, vErr.Fields)
	case errors.As(err, &nfErr):
		response.Error(w, http.StatusNotFound, nfErr.Error())
	case errors.As(err, &stockErr):
		response.Unprocessable(w, "Insufficient stock", stockErr.Lines)
	case errors.As(err, &cErr):
		response.Conflict(w, cErr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(w)
	default:
		logger.Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
