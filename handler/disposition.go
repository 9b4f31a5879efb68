package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/models"
	"github.com/Skryldev/disposition-api/repo"
)

func (h *Handler) registerDispositionRoutes(r gin.IRouter) {
	dispositions := r.Group("/disposition")
	{
		dispositions.GET("", h.listDispositions)
		dispositions.POST("", h.createDisposition)
		dispositions.GET("/:symbol", h.getDisposition)
		dispositions.PUT("/:symbol", h.updateDisposition)
	}
}

func (h *Handler) listDispositions(c *gin.Context) {
	withConn[[]*models.Disposition](h, c, func(conn *db.Conn) {
		list, err := repo.NewDispositionRepo(conn).GetAll(c.Request.Context())
		if err != nil {
			failErr[[]*models.Disposition](c, err, "list dispositions")
			return
		}
		ok(c, http.StatusOK, list, "dispositions retrieved")
	})
}

func (h *Handler) getDisposition(c *gin.Context) {
	symbol, valid := pathSymbol[models.Disposition](c)
	if !valid {
		return
	}
	withConn[models.Disposition](h, c, func(conn *db.Conn) {
		d, err := repo.NewDispositionRepo(conn).GetBySymbol(c.Request.Context(), symbol)
		if db.IsNotFound(err) {
			fail[models.Disposition](c, http.StatusNotFound, fmt.Sprintf("no disposition for symbol %d", symbol))
			return
		}
		if err != nil {
			failErr[models.Disposition](c, err, "get disposition")
			return
		}
		ok(c, http.StatusOK, *d, "disposition retrieved")
	})
}

func (h *Handler) createDisposition(c *gin.Context) {
	var params models.CreateDispositionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		fail[models.Disposition](c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if !params.StockDate.IsValid() {
		fail[models.Disposition](c, http.StatusBadRequest, "invalid request body: stock_date is required")
		return
	}
	withConn[models.Disposition](h, c, func(conn *db.Conn) {
		d, err := repo.NewDispositionRepo(conn).Create(c.Request.Context(), params)
		if err != nil {
			failErr[models.Disposition](c, err, "create disposition")
			return
		}
		ok(c, http.StatusCreated, *d, "disposition created")
	})
}

func (h *Handler) updateDisposition(c *gin.Context) {
	symbol, valid := pathSymbol[models.Disposition](c)
	if !valid {
		return
	}
	var params models.UpdateDispositionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		fail[models.Disposition](c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	withConn[models.Disposition](h, c, func(conn *db.Conn) {
		d, err := repo.NewDispositionRepo(conn).Update(c.Request.Context(), symbol, params)
		if db.IsNotFound(err) {
			fail[models.Disposition](c, http.StatusNotFound, fmt.Sprintf("no disposition for symbol %d", symbol))
			return
		}
		if err != nil {
			failErr[models.Disposition](c, err, "update disposition")
			return
		}
		ok(c, http.StatusOK, *d, "disposition updated")
	})
}

func pathSymbol[T any](c *gin.Context) (int32, bool) {
	symbol, err := repo.ParseSymbol(c.Param("symbol"))
	if err != nil {
		fail[T](c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return symbol, true
}
