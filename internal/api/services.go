package api

import (
	"github.com/okayreads/okayreads-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Book    *service.BookService
	Tag     *service.TagService
	Shelf   *service.ShelfService
	Search  *service.SearchService
	Import  *service.ImportService
	Export  *service.ExportService
}
