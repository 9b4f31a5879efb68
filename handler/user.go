package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/models"
	"github.com/Skryldev/disposition-api/repo"
)

func (h *Handler) registerUserRoutes(r gin.IRouter) {
	users := r.Group("/user")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	withConn[[]*models.User](h, c, func(conn *db.Conn) {
		users, err := repo.NewUserRepo(conn).GetAll(c.Request.Context())
		if err != nil {
			failErr[[]*models.User](c, err, "list users")
			return
		}
		ok(c, http.StatusOK, users, "users retrieved")
	})
}

func (h *Handler) getUser(c *gin.Context) {
	id, valid := userID[models.User](c)
	if !valid {
		return
	}
	withConn[models.User](h, c, func(conn *db.Conn) {
		u, err := repo.NewUserRepo(conn).GetByID(c.Request.Context(), id)
		if db.IsNotFound(err) {
			fail[models.User](c, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
			return
		}
		if err != nil {
			failErr[models.User](c, err, "get user")
			return
		}
		ok(c, http.StatusOK, *u, "user retrieved")
	})
}

func (h *Handler) createUser(c *gin.Context) {
	var params models.CreateUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		fail[models.User](c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	withConn[models.User](h, c, func(conn *db.Conn) {
		u, err := repo.NewUserRepo(conn).Create(c.Request.Context(), params)
		if err != nil {
			failErr[models.User](c, err, "create user")
			return
		}
		ok(c, http.StatusCreated, *u, "user created")
	})
}

func (h *Handler) updateUser(c *gin.Context) {
	id, valid := userID[models.User](c)
	if !valid {
		return
	}
	var params models.UpdateUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		fail[models.User](c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	withConn[models.User](h, c, func(conn *db.Conn) {
		u, err := repo.NewUserRepo(conn).Update(c.Request.Context(), id, params)
		if db.IsNotFound(err) {
			fail[models.User](c, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
			return
		}
		if err != nil {
			failErr[models.User](c, err, "update user")
			return
		}
		ok(c, http.StatusOK, *u, "user updated")
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, valid := userID[bool](c)
	if !valid {
		return
	}
	withConn[bool](h, c, func(conn *db.Conn) {
		removed, err := repo.NewUserRepo(conn).Delete(c.Request.Context(), id)
		if err != nil {
			failErr[bool](c, err, "delete user")
			return
		}
		if !removed {
			fail[bool](c, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
			return
		}
		ok(c, http.StatusOK, true, "user deleted")
	})
}

// userID parses the :id path parameter, answering 400 with an Envelope[T]
// when it is not an integer.
func userID[T any](c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail[T](c, http.StatusBadRequest, fmt.Sprintf("invalid user id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
