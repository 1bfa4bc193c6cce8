package ingest

import (
	"context"
	"log/slog"

	"github.com/poiesic/corpus/storage"
)

// transaction tracks the point IDs written for one document so a mid-flight
// failure can remove them again. The vector store has no multi-request
// transactions, so this is compensation, not isolation: rollback deletes
// exactly what this ingestion wrote.
type transaction struct {
	store     storage.VectorStore
	ids       []string
	committed bool
	logger    *slog.Logger
}

func newTransaction(store storage.VectorStore, logger *slog.Logger) *transaction {
	return &transaction{store: store, logger: logger}
}

// track records IDs that are about to be written. Call before the upsert so
// a failed write is still covered by rollback.
func (t *transaction) track(ids ...string) {
	t.ids = append(t.ids, ids...)
}

// commit marks the ingestion complete; rollback becomes a no-op.
func (t *transaction) commit() {
	t.committed = true
}

// rollback deletes every tracked point. Rollback failures are logged, not
// returned: the caller is already propagating the original error, and a
// leftover point is overwritten by the next successful ingest of the same
// file anyway.
func (t *transaction) rollback(ctx context.Context) {
	if t.committed || len(t.ids) == 0 {
		return
	}
	t.logger.Warn("rolling back partial ingestion", "points", len(t.ids))
	if err := t.store.DeleteByIDs(ctx, t.ids); err != nil {
		t.logger.Error("rollback failed, orphaned points remain", "points", len(t.ids), "err", err)
	}
	t.ids = nil
}
