package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/handler"
	attendanceHandler "github.com/jwalitptl/patient-registry/internal/handler/attendance"
	"github.com/jwalitptl/patient-registry/internal/handler/health"
	patientHandler "github.com/jwalitptl/patient-registry/internal/handler/patient"
	promHandler "github.com/jwalitptl/patient-registry/internal/handler/prometheus"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/repository/memory"
	"github.com/jwalitptl/patient-registry/internal/repository/sqlstore"
	"github.com/jwalitptl/patient-registry/internal/router"
	attendanceService "github.com/jwalitptl/patient-registry/internal/service/attendance"
	"github.com/jwalitptl/patient-registry/internal/service/notification"
	patientService "github.com/jwalitptl/patient-registry/internal/service/patient"
	"github.com/jwalitptl/patient-registry/pkg/logger"
	"github.com/jwalitptl/patient-registry/pkg/messaging"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

const metricsPath = "/metrics"

var (
	server  *httptest.Server
	baseURL string
	db      *sqlstore.DB
)

// TestResponse is the decoded response envelope.
type TestResponse struct {
	StatusCode int
	Success    bool
	Message    string
	Errors     []string
	Data       map[string]interface{}
	RawData    string
}

func (r TestResponse) IsSuccess() bool {
	return r.Success
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r TestResponse) GetID() int64 {
	if r.Data == nil {
		return 0
	}
	if v, ok := r.Data["id"].(float64); ok {
		return int64(v)
	}
	return 0
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if err := startServer(); err != nil {
		fmt.Printf("Error: failed to start API server: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	server.Close()
	db.Close()

	os.Exit(code)
}

func startServer() error {
	ctx := context.Background()
	log := logger.Nop()

	var err error
	db, err = sqlstore.Open(ctx, config.DatabaseConfig{Driver: sqlstore.DriverSQLite, Path: ":memory:"}, log, nil)
	if err != nil {
		return err
	}
	if err := db.BootstrapSchema(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New("api_test", registry)

	notifier := notification.NewService(notification.Config{}, messaging.NewNoopBroker(),
		email.NewService(config.EmailConfig{}, log), m, log)

	patients := patientService.NewService(sqlstore.NewPatientRepository(db), notifier, m, log)
	attendance := attendanceService.NewService(memory.NewOrderRepository(memory.DemoOrders), log)

	r := router.NewRouter(
		patientHandler.NewHandler(patients),
		attendanceHandler.NewHandler(attendance),
		health.NewHandler(db),
		handler.NewHandler("patient registry API", router.Endpoints(metricsPath)),
		promHandler.New(registry, m),
		router.RouterConfig{
			CORSConfig:   middleware.DefaultCORSConfig(),
			MaxBodyBytes: 1 << 20,
			MetricsPath:  metricsPath,
		},
	)
	r.Setup()

	server = httptest.NewServer(r.Engine())
	baseURL = server.URL
	return nil
}

func makeRequest(method, path string, body interface{}) TestResponse {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonBody)
	}
	return doRequest(method, path, reader)
}

func makeRawRequest(method, path, body string) TestResponse {
	return doRequest(method, path, bytes.NewBufferString(body))
}

func doRequest(method, path string, body io.Reader) TestResponse {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return TestResponse{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	response, err := client.Do(req)
	if err != nil {
		return TestResponse{Message: err.Error()}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return TestResponse{StatusCode: response.StatusCode, Message: err.Error()}
	}

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Errors  []string        `json:"errors"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return TestResponse{
			StatusCode: response.StatusCode,
			Message:    fmt.Sprintf("Failed to parse response: %s\nRaw response: %s", err.Error(), string(respBody)),
			RawData:    string(respBody),
		}
	}

	testResp := TestResponse{
		StatusCode: response.StatusCode,
		Success:    envelope.Success,
		Message:    envelope.Message,
		Errors:     envelope.Errors,
		RawData:    string(envelope.Data),
	}

	if len(envelope.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(envelope.Data, &data); err == nil {
			testResp.Data = data
		}
	}

	return testResp
}
