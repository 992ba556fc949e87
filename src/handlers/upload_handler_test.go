// src/handlers/upload_handler_test.go
package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catearacil/facturas/src/config"
	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		MaxUploadSizeBytes: 10 * 1024 * 1024,
		TaxRate:            decimal.RequireFromString("0.21"),
		InvoiceCeiling:     decimal.RequireFromString("400.00"),
	}
	os.Exit(m.Run())
}

type stubStatementService struct {
	result      *services.ProcessResult
	err         error
	gotFilename string
	gotOpts     services.RunOptions
	called      bool
}

func (s *stubStatementService) ProcessStatement(_ io.Reader, filename string, opts services.RunOptions) (*services.ProcessResult, error) {
	s.called = true
	s.gotFilename = filename
	s.gotOpts = opts
	return s.result, s.err
}

// xlsxHeader is enough of a ZIP signature to pass content validation; the
// parsing itself is stubbed out in these tests.
var xlsxHeader = []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleUploadSuccess(t *testing.T) {
	stub := &stubStatementService{result: &services.ProcessResult{}}
	handler := NewUploadHandler(stub)

	body, contentType := multipartUpload(t, nil, "extracto.xlsx", xlsxHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.called)
	assert.Equal(t, "extracto.xlsx", stub.gotFilename)
	assert.Nil(t, stub.gotOpts.TaxRate)
	assert.Nil(t, stub.gotOpts.Ceiling)
}

func TestHandleUploadPassesOverrides(t *testing.T) {
	stub := &stubStatementService{result: &services.ProcessResult{}}
	handler := NewUploadHandler(stub)

	fields := map[string]string{"tax_rate": "0.10", "max_total": "250.00"}
	body, contentType := multipartUpload(t, fields, "extracto.xlsx", xlsxHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.gotOpts.TaxRate)
	require.NotNil(t, stub.gotOpts.Ceiling)
	assert.True(t, stub.gotOpts.TaxRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, stub.gotOpts.Ceiling.Equal(decimal.RequireFromString("250.00")))
}

func TestHandleUploadRejectsBadOverrides(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"tax rate above one", map[string]string{"tax_rate": "1.5"}},
		{"negative tax rate", map[string]string{"tax_rate": "-0.1"}},
		{"unparsable tax rate", map[string]string{"tax_rate": "veintiuno"}},
		{"zero ceiling", map[string]string{"max_total": "0"}},
		{"unparsable ceiling", map[string]string{"max_total": "mucho"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubStatementService{result: &services.ProcessResult{}}
			handler := NewUploadHandler(stub)

			body, contentType := multipartUpload(t, tt.fields, "extracto.xlsx", xlsxHeader)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.HandleUpload(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, stub.called)
		})
	}
}

func TestHandleUploadMissingFile(t *testing.T) {
	stub := &stubStatementService{}
	handler := NewUploadHandler(stub)

	body, contentType := multipartUpload(t, map[string]string{"other": "x"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, stub.called)
}

func TestHandleUploadRejectsNonWorkbookContent(t *testing.T) {
	stub := &stubStatementService{}
	handler := NewUploadHandler(stub)

	body, contentType := multipartUpload(t, nil, "extracto.xlsx", []byte("plain text pretending"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, stub.called)
}

func TestHandleUploadServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unresolved columns", services.ErrColumnsUnresolved, http.StatusUnprocessableEntity},
		{"unreadable spreadsheet", services.ErrSpreadsheetUnreadable, http.StatusBadRequest},
		{"invalid billing config", services.ErrInvalidBillingConfig, http.StatusBadRequest},
		{"rendering failure", services.ErrRenderingFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubStatementService{err: tt.serviceErr}
			handler := NewUploadHandler(stub)

			body, contentType := multipartUpload(t, nil, "extracto.xlsx", xlsxHeader)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.HandleUpload(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
