package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHttpStatusRecorder_InterceptsWriteHeader(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: inner, Status: 200}

	// handlers only see the http.ResponseWriter interface
	var w http.ResponseWriter = rec
	w.WriteHeader(http.StatusNotFound)

	if rec.Status != http.StatusNotFound {
		t.Errorf("Status = %d; want %d", rec.Status, http.StatusNotFound)
	}
	if inner.Code != http.StatusNotFound {
		t.Errorf("underlying writer Code = %d; want %d", inner.Code, http.StatusNotFound)
	}
}

func TestHttpStatusRecorder_DefaultsTo200(t *testing.T) {
	rec := &HttpStatusRecorder{ResponseWriter: httptest.NewRecorder(), Status: 200}

	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if rec.Status != http.StatusOK {
		t.Errorf("Status = %d; want 200", rec.Status)
	}
}
