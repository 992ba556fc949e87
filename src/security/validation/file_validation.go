// src/security/validation/file_validation.go
package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/catearacil/facturas/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // declared by older clients for spreadsheets
	"application/octet-stream": true, // some browsers fall back to this for .xlsx
}

// xlsxMagicBytes is the ZIP local-file-header signature; an XLSX workbook is
// a ZIP container and always starts with it.
var xlsxMagicBytes = []byte{0x50, 0x4B, 0x03, 0x04}

// oleMagicBytes is the legacy .xls (OLE compound file) signature. Rejected
// explicitly: the spreadsheet reader only handles XLSX.
var oleMagicBytes = []byte{0xD0, 0xCF, 0x11, 0xE0}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedClientContentTypes[normalized] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for statement upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature
// so a renamed executable or text file cannot masquerade as a spreadsheet.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 8)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content checking: %w", err)
	}

	// IMPORTANT: Reset the file read pointer so the actual parser can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n == 0 {
		return fmt.Errorf("file is empty")
	}

	if bytes.HasPrefix(buffer[:n], oleMagicBytes) {
		logger.L.Warn("File rejected: legacy .xls format detected")
		return fmt.Errorf("legacy .xls files are not supported; please export the statement as .xlsx")
	}
	if !bytes.HasPrefix(buffer[:n], xlsxMagicBytes) {
		logger.L.Warn("File rejected: content is not an XLSX workbook")
		return fmt.Errorf("file content is not a valid .xlsx spreadsheet")
	}

	logger.L.Debug("File content validated as XLSX workbook")
	return nil
}
