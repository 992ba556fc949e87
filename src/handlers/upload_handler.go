// src/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/catearacil/facturas/src/config"
	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/security/validation"
	"github.com/catearacil/facturas/src/services"
	"github.com/catearacil/facturas/src/utils"
)

type UploadHandler struct {
	statementService services.StatementService
}

func NewUploadHandler(service services.StatementService) *UploadHandler {
	return &UploadHandler{
		statementService: service,
	}
}

// HandleUpload receives a bank-statement spreadsheet as multipart form data
// and runs the invoice pipeline on it. Optional form fields "tax_rate" and
// "max_total" override the configured defaults for this run only.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("failed to process upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	opts, err := parseRunOptions(r)
	if err != nil {
		ctxLogger.Warn("Invalid billing override in upload request", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "failed to retrieve file from request; ensure the 'file' field is used", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		ctxLogger.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		ctxLogger.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		ctxLogger.Warn("File content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctxLogger.Info("Processing statement upload", "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.statementService.ProcessStatement(file, fileHeader.Filename, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrColumnsUnresolved):
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, services.ErrSpreadsheetUnreadable), errors.Is(err, services.ErrInvalidBillingConfig):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			ctxLogger.Error("Statement processing failed", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "statement processing failed", http.StatusInternalServerError)
		}
		return
	}

	ctxLogger.Info("Statement processed", "filename", fileHeader.Filename,
		"invoices", len(result.Invoices), "excluded", len(result.Excluded), "splits", len(result.Splits))
	utils.SendJSON(w, result, http.StatusOK)
}

// parseRunOptions reads the optional per-request billing overrides. Values
// must parse and be sensible; a bad override is reported, never defaulted.
func parseRunOptions(r *http.Request) (services.RunOptions, error) {
	var opts services.RunOptions

	if raw := r.FormValue("tax_rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid tax_rate %q", raw)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return opts, fmt.Errorf("tax_rate must be a fraction between 0 and 1, got %s", rate)
		}
		opts.TaxRate = &rate
	}

	if raw := r.FormValue("max_total"); raw != "" {
		ceiling, err := decimal.NewFromString(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid max_total %q", raw)
		}
		if !ceiling.IsPositive() {
			return opts, fmt.Errorf("max_total must be positive, got %s", ceiling)
		}
		opts.Ceiling = &ceiling
	}

	return opts, nil
}
