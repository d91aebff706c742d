package api

import (
	"fmt"
	"net/http"
	"time"
)

func (s *Server) registerExportRoutes() {
	// CSV streaming bypasses Huma; the body is a file, not a JSON envelope.
	s.router.Get("/api/v1/export/csv", s.handleExportCSV)
}

// handleExportCSV streams the user's shelf as a CSV download.
// GET /api/v1/export/csv
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", s.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	filename := fmt.Sprintf("okayreads-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.services.Export.ExportCSV(ctx, userID, w); err != nil {
		// Headers may already be sent; log and give up on the response.
		s.logger.Error("csv export failed", "error", err, "user_id", userID)
	}
}
