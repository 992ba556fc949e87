// src/security/validation/file_validation_test.go
package validation

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catearacil/facturas/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestValidateClientContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", false},
		{"legacy excel declaration", "application/vnd.ms-excel", false},
		{"octet stream fallback", "application/octet-stream", false},
		{"with charset parameter", "application/octet-stream; charset=binary", false},
		{"mixed case", "Application/Octet-Stream", false},
		{"pdf", "application/pdf", true},
		{"html", "text/html", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientContentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr string
	}{
		{"xlsx signature", []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00, 0x00, 0x00, 0x08}, ""},
		{"legacy xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, ".xlsx"},
		{"plain text", []byte("fecha;concepto;importe"), "not a valid .xlsx"},
		{"empty", nil, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileContentByMagicBytes(bytes.NewReader(tt.content))
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileContentResetsReader(t *testing.T) {
	content := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("rest of workbook")...)
	reader := bytes.NewReader(content)

	assert.NoError(t, ValidateFileContentByMagicBytes(reader))

	all := make([]byte, len(content))
	n, _ := reader.Read(all)
	assert.Equal(t, len(content), n, "reader not rewound for the parser")
}
