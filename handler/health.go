package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logger(c).Warn().Err(err).Msg("health check ping failed")
		fail[string](c, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	ok(c, http.StatusOK, "OK", "service is running")
}
