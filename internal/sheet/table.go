package sheet

import (
	"context"
	"sync"

	"github.com/muhammadolammi/cvanomaly/internal/cv"
)

// Table runs read-merge-write cycles against a Store one at a time.
type Table struct {
	store Store
	mu    sync.Mutex
}

func NewTable(store Store) *Table {
	return &Table{store: store}
}

// Append loads the persisted table, puts reports after the existing rows and
// writes the result back.
func (t *Table) Append(ctx context.Context, reports []cv.DocumentReport) ([]cv.DocumentReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	merged := cv.Aggregate(reports, prior)
	if err := t.store.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Export returns the persisted table. It waits for any Append in progress.
func (t *Table) Export(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Export(ctx)
}
