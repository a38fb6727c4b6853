package attendance

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Replier interface {
	Reply(ctx context.Context, text, sessionID string) (model.AttendanceReply, error)
}

type Handler struct {
	service Replier
}

func NewHandler(service Replier) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/attendance", h.Attend)
}

func (h *Handler) Attend(c *gin.Context) {
	var req model.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, "text is required", `the "text" field is required`)
		return
	}

	reply, err := h.service.Reply(c.Request.Context(), req.Text, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("attendance failed")
		httputil.RespondInternal(c)
		return
	}

	c.JSON(http.StatusOK, reply)
}
