// Package handler exposes the user and disposition repositories over HTTP.
// Every response body is a models.Envelope.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/models"
	"github.com/Skryldev/disposition-api/repo"
)

// Handler serves requests against a shared pool. Each request borrows one
// connection for its whole duration.
type Handler struct {
	db *db.DB
}

// New returns a Handler backed by database.
func New(database *db.DB) *Handler {
	return &Handler{db: database}
}

// withConn acquires a connection, runs fn and releases the connection. When
// acquisition fails the request is answered with 500 and fn is not called.
func withConn[T any](h *Handler, c *gin.Context, fn func(*db.Conn)) {
	conn, err := h.db.Acquire(c.Request.Context())
	if err != nil {
		logger(c).Error().Err(err).Msg("acquire connection")
		fail[T](c, http.StatusInternalServerError, fmt.Sprintf("database connection failed: %v", err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger(c).Warn().Err(err).Msg("release connection")
		}
	}()
	fn(conn)
}

func ok[T any](c *gin.Context, status int, data T, msg string) {
	c.JSON(status, models.Success(data, msg))
}

func fail[T any](c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.Failure[T](msg))
}

// statusFor maps a repository error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, repo.ErrInvalidSymbol):
		return http.StatusBadRequest
	case db.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// failErr answers with the status statusFor picks. Conflicts and bad symbols
// carry their own message; anything else is reported as "failed to <action>".
func failErr[T any](c *gin.Context, err error, action string) {
	status := statusFor(err)
	var msg string
	switch {
	case errors.Is(err, repo.ErrEmailExists):
		msg = "email already exists"
	case status == http.StatusInternalServerError:
		logger(c).Error().Err(err).Str("action", action).Msg("request failed")
		msg = fmt.Sprintf("failed to %s: %v", action, err)
	default:
		msg = err.Error()
	}
	fail[T](c, status, msg)
}

// logger returns the request-scoped logger set up by RequestID.
func logger(c *gin.Context) *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}
