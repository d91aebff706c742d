package providers

import (
	"github.com/samber/do/v2"

	"github.com/okayreads/okayreads-server/internal/config"
	"github.com/okayreads/okayreads-server/internal/logger"
	"github.com/okayreads/okayreads-server/internal/metadata/googlebooks"
	"github.com/okayreads/okayreads-server/internal/metadata/openlibrary"
	"github.com/okayreads/okayreads-server/internal/service"
)

// ProvideGoogleBooksClient provides the primary metadata lookup client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return googlebooks.NewClient(cfg.Lookup.GoogleBooksBaseURL, cfg.Lookup.Timeout, log.Logger), nil
}

// ProvideOpenLibraryClient provides the fallback metadata lookup client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openlibrary.NewClient(cfg.Lookup.OpenLibraryBaseURL, cfg.Lookup.Timeout, log.Logger), nil
}

// ProvideSearchService provides the two-tier metadata search service.
// Google Books is queried first; Open Library takes over when it
// returns nothing.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	primary := do.MustInvoke[*googlebooks.Client](i)
	fallback := do.MustInvoke[*openlibrary.Client](i)

	return service.NewSearchService(log.Logger, primary, fallback), nil
}
