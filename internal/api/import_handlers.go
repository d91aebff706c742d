package api

import (
	"context"
	"io"
	"net/http"
)

func (s *Server) registerImportRoutes() {
	// Multipart uploads go through chi directly since Huma doesn't
	// easily support multipart forms.
	s.router.Post("/api/v1/import/goodreads", s.handleImportGoodreads)
	s.router.Post("/api/v1/import/isbn-list", s.handleImportISBNList)
}

type importFunc func(ctx context.Context, userID string, r io.Reader) (any, error)

// handleImportGoodreads accepts a Goodreads CSV export upload.
// POST /api/v1/import/goodreads
// Content-Type: multipart/form-data with "file" field
func (s *Server) handleImportGoodreads(w http.ResponseWriter, r *http.Request) {
	s.handleImportUpload(w, r, func(ctx context.Context, userID string, file io.Reader) (any, error) {
		return s.services.Import.ImportGoodreadsCSV(ctx, userID, file)
	})
}

// handleImportISBNList accepts a newline-delimited ISBN list upload.
// POST /api/v1/import/isbn-list
// Content-Type: multipart/form-data with "file" field
func (s *Server) handleImportISBNList(w http.ResponseWriter, r *http.Request) {
	s.handleImportUpload(w, r, func(ctx context.Context, userID string, file io.Reader) (any, error) {
		return s.services.Import.ImportISBNList(ctx, userID, file)
	})
}

func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request, run importFunc) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded. Use 'file' field in multipart form", s.logger)
		return
	}
	defer file.Close()

	summary, err := run(ctx, userID, file)
	if err != nil {
		s.logger.Error("import failed", "error", err, "user_id", userID, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}

	s.logger.Info("import finished", "user_id", userID, "filename", header.Filename)
	writeSuccess(w, http.StatusOK, summary, s.logger)
}
