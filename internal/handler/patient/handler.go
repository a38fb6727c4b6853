package patient

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/patient"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

// patientFields are the body keys passed on to registration; anything else
// in the body is ignored.
var patientFields = []string{"name", "age", "gender", "phone", "email"}

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.SearchPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.AbortWithError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httputil.AbortWithError(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	if len(bytes.TrimSpace(body)) == 0 {
		httputil.RespondWithError(c, http.StatusBadRequest, "patient data is required", "request body must not be empty")
		return
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, "malformed JSON body", "request body must be a JSON object")
		return
	}
	if len(raw) == 0 {
		httputil.RespondWithError(c, http.StatusBadRequest, "patient data is required", "request body must not be empty")
		return
	}

	input := make(model.RawPatient, len(patientFields))
	for _, field := range patientFields {
		if v, ok := raw[field]; ok {
			input[field] = v
		}
	}

	result := h.service.Register(c.Request.Context(), input)
	respond(c, result, http.StatusCreated)
}

func (h *Handler) GetPatient(c *gin.Context) {
	result := h.service.GetByID(c.Request.Context(), c.Param("id"))
	respond(c, result, http.StatusOK)
}

func (h *Handler) ListPatients(c *gin.Context) {
	result := h.service.List(c.Request.Context(), c.Query("page"), c.Query("limit"))
	respond(c, result, http.StatusOK)
}

func (h *Handler) SearchPatients(c *gin.Context) {
	result := h.service.SearchByName(c.Request.Context(), c.Query("name"), c.Query("page"), c.Query("limit"))
	respond(c, result, http.StatusOK)
}

func respond(c *gin.Context, result model.Result, okStatus int) {
	httputil.Respond(c, statusFor(result.Kind, okStatus), httputil.Envelope{
		Success: result.Success,
		Message: result.Message,
		Errors:  result.Errors,
		Data:    result.Data,
	})
}

func statusFor(kind model.ResultKind, okStatus int) int {
	switch kind {
	case model.ResultOK:
		return okStatus
	case model.ResultInvalid, model.ResultConflict:
		return http.StatusBadRequest
	case model.ResultNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
