package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/batches/B1", nil)
	return c, w
}

func TestRespondErrMapsAPIError(t *testing.T) {
	log, logs := observedLogger()
	c, w := testContext()

	RespondErr(c, log, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch 'B1' not found"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "BATCH_NOT_FOUND") {
		t.Fatalf("missing code in body: %s", w.Body.String())
	}
	// A 4xx is the client's problem; it must not hit the error log.
	if logs.Len() != 0 {
		t.Fatalf("unexpected log entries: %v", logs.All())
	}
}

func TestRespondErrLogsMaskedInternalError(t *testing.T) {
	log, logs := observedLogger()
	c, w := testContext()

	cause := errors.New("pq: connection refused")
	RespondErr(c, log, cause)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("internal cause leaked to client: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "An internal error occurred") {
		t.Fatalf("missing masked message: %s", w.Body.String())
	}

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	found := false
	for _, field := range entry.Context {
		if field.Key == "error" {
			found = true
		}
	}
	if !found {
		t.Fatalf("log entry carries no error field: %+v", entry)
	}
}

func TestRespondErrLogsUpstreamFailure(t *testing.T) {
	log, logs := observedLogger()
	c, w := testContext()

	RespondErr(c, log, apierr.New(http.StatusBadGateway, "CHAIN_ERROR", errors.New("rpc timeout")))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", w.Code)
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1 for a 5xx", logs.Len())
	}
}

func TestRespondErrNilLogger(t *testing.T) {
	c, w := testContext()
	RespondErr(c, nil, errors.New("boom"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
}
