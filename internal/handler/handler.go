package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

const Version = "1.0.0"

// Handler serves the service-level endpoints that belong to no resource.
type Handler struct {
	name      string
	endpoints map[string]string
}

func NewHandler(name string, endpoints map[string]string) *Handler {
	return &Handler{
		name:      name,
		endpoints: endpoints,
	}
}

func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   h.name,
		"version":   Version,
		"endpoints": h.endpoints,
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	httputil.RespondWithError(c, http.StatusNotFound, "route not found",
		"no route matches "+c.Request.Method+" "+c.Request.URL.Path)
}
