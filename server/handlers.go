package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/feature"
	"github.com/kbukum/oswald/observability"
	"github.com/kbukum/oswald/validation"
	"github.com/kbukum/oswald/version"
)

var startTime = time.Now()

// handleDispatch decodes the body into the trigger's request type, validates
// it and serves it. Commands answer 204, queries 200 with the result.
func (s *Server) handleDispatch(c *gin.Context) {
	trigger := c.Param("trigger")
	info, ok := s.dispatcher.Lookup(trigger)
	if !ok {
		RespondWithError(c, apperrors.HandlerNotFound(trigger))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondWithError(c, bodyError(err))
		return
	}

	req, err := s.dispatcher.Decode(trigger, body)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		RespondWithError(c, err)
		return
	}

	result, err := s.dispatcher.Serve(c.Request.Context(), req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if info.Kind == feature.KindCommand.String() {
		RespondNoContent(c)
		return
	}
	RespondOK(c, result)
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge).
			WithDetail("limit", tooLarge.Limit)
	}
	return apperrors.InvalidInput("body", err.Error())
}

func (s *Server) handleFeatures(c *gin.Context) {
	RespondOK(c, s.dispatcher.Features())
}

func (s *Server) handleRegistrations(c *gin.Context) {
	RespondOK(c, s.registry.Registrations())
}

func (s *Server) handleHealth(c *gin.Context) {
	health := observability.CheckAll(c.Request.Context(), s.service, version.Get().String(),
		registryHealth{s.registry}, s.dispatcher)

	status := http.StatusOK
	if health.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": s.service,
		"build":   version.Get(),
		"uptime":  time.Since(startTime).String(),
	})
}
