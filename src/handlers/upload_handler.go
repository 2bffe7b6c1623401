package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/config"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/security/validation"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/services"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type UploadHandler struct {
	importService services.ImportService
}

func NewUploadHandler(service services.ImportService) *UploadHandler {
	return &UploadHandler{
		importService: service,
	}
}

// HandleUpload accepts a multipart CSV upload. Form fields: "file" (the CSV),
// "source" (broker template identifier), "broker" (optional account label).
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		utils.SendJSONError(w, "Missing 'source' form field (broker csv format identifier)", http.StatusBadRequest)
		return
	}
	brokerName := r.FormValue("broker")

	logger.L.Info("Processing upload request", "userID", userID, "filename", fileHeader.Filename, "source", source)
	result, err := h.importService.ProcessUpload(file, userID, source, brokerName)
	if err != nil {
		h.sendImportError(w, userID, err)
		return
	}

	utils.SendJSON(w, result)
}

// sendImportError maps the import error taxonomy onto HTTP responses. Format
// and validation problems carry enough detail for the user to fix the source
// file; upstream failures stay opaque.
func (h *UploadHandler) sendImportError(w http.ResponseWriter, userID int64, err error) {
	var formatErr *parsers.FormatMismatchError
	var rowErr *parsers.RowError

	switch {
	case errors.As(err, &formatErr):
		logger.L.Warn("Upload rejected: csv format mismatch", "userID", userID, "format", formatErr.Format, "missing", formatErr.Missing)
		utils.SendJSONError(w, formatErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &rowErr), errors.Is(err, validation.ErrValidationFailed):
		logger.L.Warn("Upload rejected: row validation failed", "userID", userID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrParsingFailed):
		logger.L.Warn("Upload rejected: csv parsing failed", "userID", userID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrUpstreamFailed):
		logger.L.Error("Upload failed: storage error", "userID", userID, "error", err)
		utils.SendJSONError(w, "Storage error while processing import; no rows were written", http.StatusInternalServerError)
	default:
		logger.L.Error("Upload failed: unexpected error", "userID", userID, "error", err)
		utils.SendJSONError(w, "Unexpected error processing upload", http.StatusInternalServerError)
	}
}
