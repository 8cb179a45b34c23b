package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokido/internal/services"
)

// respondError maps a service error to a status code and a localized message.
// validationKey names the message used for ErrValidation.
func respondError(c *gin.Context, err error, locale, validationKey string) {
	status, key := http.StatusInternalServerError, "error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status, key = http.StatusBadRequest, validationKey
	case errors.Is(err, services.ErrNotFound):
		status, key = http.StatusNotFound, "errNotFound"
	case errors.Is(err, services.ErrUnparsableResponse):
		status, key = http.StatusUnprocessableEntity, "errUnparsable"
	case errors.Is(err, services.ErrNotConfigured):
		status, key = http.StatusServiceUnavailable, "errUpstream"
	case errors.Is(err, services.ErrUpstreamUnavailable):
		status, key = http.StatusBadGateway, "errUpstream"
	default:
		log.Printf("Handler error on %s: %v", c.FullPath(), err)
	}

	c.JSON(status, gin.H{
		"error":  services.Translate(locale, key),
		"detail": err.Error(),
	})
}
