package api

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func gzipServer() *echo.Echo {
	e := echo.New()
	e.Use(GzipRequest())
	e.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlain, body)
	})
	return e
}

func TestGzipRequestDecompressesBody(t *testing.T) {
	e := gzipServer()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(`{"task_name":"Spec"}`)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != `{"task_name":"Spec"}` {
		t.Fatalf("handler must see the plain body, got %q", rec.Body.String())
	}
}

func TestGzipRequestPassesPlainBodiesThrough(t *testing.T) {
	e := gzipServer()

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("plain"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "plain" {
		t.Fatalf("plain body must pass untouched, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGzipRequestRejectsCorruptBody(t *testing.T) {
	e := gzipServer()

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("not gzip at all"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", rec.Code)
	}
}
