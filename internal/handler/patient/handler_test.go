package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type fakeService struct {
	result model.Result
	raw    model.RawPatient
	args   []string
}

func (f *fakeService) Register(_ context.Context, raw model.RawPatient) model.Result {
	f.raw = raw
	return f.result
}

func (f *fakeService) GetByID(_ context.Context, rawID string) model.Result {
	f.args = []string{rawID}
	return f.result
}

func (f *fakeService) List(_ context.Context, rawPage, rawLimit string) model.Result {
	f.args = []string{rawPage, rawLimit}
	return f.result
}

func (f *fakeService) SearchByName(_ context.Context, name, rawPage, rawLimit string) model.Result {
	f.args = []string{name, rawPage, rawLimit}
	return f.result
}

func setupRouter(svc *fakeService, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, httputil.Envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env httputil.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreatePatient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		result model.Result
		want   int
	}{
		{"created", model.Succeeded("patient registered successfully", &model.Patient{ID: 1}), http.StatusCreated},
		{"invalid", model.Failed(model.ResultInvalid, "invalid patient data", "name is required"), http.StatusBadRequest},
		{"conflict", model.Failed(model.ResultConflict, "email already registered"), http.StatusBadRequest},
		{"internal", model.Failed(model.ResultInternal, "internal server error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{result: tt.result}
			w, env := do(setupRouter(svc), http.MethodPost, "/api/patients", `{"name":"Maria"}`)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.result.Success, env.Success)
			assert.Equal(t, tt.result.Message, env.Message)
			assert.NotNil(t, env.Errors)
		})
	}
}

func TestCreatePatient_PassesKnownFieldsOnly(t *testing.T) {
	svc := &fakeService{result: model.Succeeded("ok", nil)}
	body := `{"name":"Maria","age":32,"gender":"f","phone":"1","email":"m@x.com","role":"admin"}`

	w, _ := do(setupRouter(svc), http.MethodPost, "/api/patients", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, svc.raw, 5)
	assert.NotContains(t, svc.raw, "role")
	assert.Equal(t, json.Number("32"), svc.raw["age"])
}

func TestCreatePatient_BadBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", "", "patient data is required"},
		{"whitespace", "   ", "patient data is required"},
		{"empty object", "{}", "patient data is required"},
		{"malformed", `{"name":`, "malformed JSON body"},
		{"array", `[1,2]`, "malformed JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			var env httputil.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Nil(t, svc.raw)
		})
	}
}

func TestCreatePatient_BodyTooLarge(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc, middleware.SizeLimit(16))

	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.raw)
}

func TestGetPatient(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeService{result: model.Succeeded("patient found", &model.Patient{ID: 5, Name: "Ana"})}
		w, env := do(setupRouter(svc), http.MethodGet, "/api/patients/5", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"5"}, svc.args)
		data := env.Data.(map[string]interface{})
		assert.Equal(t, "Ana", data["name"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeService{result: model.Failed(model.ResultNotFound, "patient not found")}
		w, env := do(setupRouter(svc), http.MethodGet, "/api/patients/99", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Nil(t, env.Data)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := &fakeService{result: model.Failed(model.ResultInvalid, "invalid patient id")}
		w, _ := do(setupRouter(svc), http.MethodGet, "/api/patients/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"abc"}, svc.args)
	})
}

func TestListAndSearch_QueryParams(t *testing.T) {
	svc := &fakeService{result: model.Succeeded("ok", []model.Patient{})}
	r := setupRouter(svc)

	w, _ := do(r, http.MethodGet, "/api/patients?page=2&limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2", "5"}, svc.args)

	w, env := do(r, http.MethodGet, "/api/patients/search?name=mar", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mar", "", ""}, svc.args)
	assert.Equal(t, []interface{}{}, env.Data)
}
