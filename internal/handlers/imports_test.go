package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestParseImportUpload(t *testing.T) {
	t.Run("accepts a file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "stok.csv", "Nomor Seri\nSN-1\n")
		req := httptest.NewRequest(http.MethodPost, "/api/imports/tires", body)
		req.Header.Set("Content-Type", contentType)

		filename, data, appErr := parseImportUpload(req, 1<<20)
		if appErr != nil {
			t.Fatalf("unexpected error: %+v", appErr)
		}
		if filename != "stok.csv" {
			t.Fatalf("filename = %q", filename)
		}
		if !strings.HasPrefix(string(data), "Nomor Seri") {
			t.Fatalf("data = %q", data)
		}
	})

	t.Run("rejects non multipart requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/imports/tires", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")

		if _, _, appErr := parseImportUpload(req, 1<<20); appErr == nil || appErr.Code != "invalid_content_type" {
			t.Fatalf("appErr = %+v, want invalid_content_type", appErr)
		}
	})

	t.Run("rejects a missing file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "attachment", "stok.csv", "data")
		req := httptest.NewRequest(http.MethodPost, "/api/imports/tires", body)
		req.Header.Set("Content-Type", contentType)

		if _, _, appErr := parseImportUpload(req, 1<<20); appErr == nil || appErr.Code != "missing_file" {
			t.Fatalf("appErr = %+v, want missing_file", appErr)
		}
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "stok.csv", strings.Repeat("x", 64))
		req := httptest.NewRequest(http.MethodPost, "/api/imports/tires", body)
		req.Header.Set("Content-Type", contentType)

		if _, _, appErr := parseImportUpload(req, 16); appErr == nil || appErr.Code != "file_too_large" {
			t.Fatalf("appErr = %+v, want file_too_large", appErr)
		}
	})
}

func TestGetImportsTemplatesTemplate(t *testing.T) {
	s := &Server{}
	router := chi.NewRouter()
	router.Get("/imports/templates/{template}", s.GetImportsTemplatesTemplate)

	t.Run("tires template matches the column mapper", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/imports/templates/tires", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
			t.Fatalf("content type = %q", ct)
		}
		if !strings.HasPrefix(rr.Body.String(), "Nomor Seri,") {
			t.Fatalf("body = %q", rr.Body.String())
		}
	})

	t.Run("vehicles template", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/imports/templates/vehicles", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if !strings.HasPrefix(rr.Body.String(), "Plat Nomor,") {
			t.Fatalf("body = %q", rr.Body.String())
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/imports/templates/audits", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rr.Code)
		}
	})
}

func TestNormalizeBodyDate(t *testing.T) {
	t.Run("valid date passes through", func(t *testing.T) {
		got, ok := normalizeBodyDate("2026-01-08")
		if !ok || got != "2026-01-08" {
			t.Fatalf("got %q ok=%v", got, ok)
		}
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		got, ok := normalizeBodyDate("")
		if !ok || got == "" {
			t.Fatalf("got %q ok=%v", got, ok)
		}
	})

	t.Run("other layouts are rejected", func(t *testing.T) {
		for _, in := range []string{"08-01-2026", "tomorrow", "2026/01/08"} {
			if _, ok := normalizeBodyDate(in); ok {
				t.Fatalf("expected %q to be rejected", in)
			}
		}
	})
}
