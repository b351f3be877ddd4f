package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test", "debug", "console")
	router := gin.New()
	router.Use(TraceID(), RequestLogger(log), ErrorHandler(log), CORS())
	return router
}

func TestTraceID_GeneratedWhenMissing(t *testing.T) {
	// Arrange
	router := newRouter()
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Assert
	if w.Header().Get(TraceIDHeader) == "" {
		t.Error("expected a generated trace ID header")
	}
}

func TestTraceID_EchoesCallerValue(t *testing.T) {
	// Arrange
	router := newRouter()
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "trace-123")

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	if got := w.Header().Get(TraceIDHeader); got != "trace-123" {
		t.Errorf("expected the caller's trace ID echoed, got %q", got)
	}
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	// Arrange
	router := newRouter()
	router.GET("/orders/9", func(c *gin.Context) {
		c.Error(apperrors.NewNotFound("order", 9))
	})

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/9", nil))

	// Assert
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON error envelope, got %v", err)
	}
	if body.Error.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, body.Error.Code)
	}
	if body.TraceID == "" {
		t.Error("expected the envelope to carry the trace ID")
	}
}

func TestCORS_Preflight(t *testing.T) {
	// Arrange
	router := newRouter()
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))

	// Assert
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	methods := w.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(methods, "PATCH") {
		t.Errorf("expected PATCH allowed, got %q", methods)
	}
	if strings.Contains(methods, "DELETE") {
		t.Errorf("expected DELETE absent from allowed methods, got %q", methods)
	}
}
