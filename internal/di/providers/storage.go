package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mirrorlog/mirrorlog-server/internal/config"
	"github.com/mirrorlog/mirrorlog-server/internal/logger"
	"github.com/mirrorlog/mirrorlog-server/internal/search"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.DatabasePath())

	return &StoreHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.LogIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve log index and wires it to the
// store for automatic indexing on log writes.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewLogIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{LogIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the search index when it is empty
// but logs exist in the store. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	logs, err := storeHandle.ListAllLogs(ctx)
	if err != nil || len(logs) == 0 {
		return
	}

	log.Info("Search index is empty but logs exist, triggering initial reindex",
		"log_count", len(logs),
	)

	go func() {
		reindexCtx := context.Background()
		indexed := 0
		for _, entry := range logs {
			if err := indexHandle.IndexLog(reindexCtx, entry); err != nil {
				log.Warn("failed to index log during reindex", "log_id", entry.ID, "error", err)
				continue
			}
			indexed++
		}
		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
