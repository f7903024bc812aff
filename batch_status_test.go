package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvanomaly/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryLog records the sqlc query names executed against it.
type queryLog struct {
	names []string
}

func (q *queryLog) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	name, _, _ := strings.Cut(strings.TrimPrefix(query, "-- name: "), " ")
	q.names = append(q.names, name)
	return driver.RowsAffected(1), nil
}

func (q *queryLog) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errors.New("not supported")
}

func (q *queryLog) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (q *queryLog) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type publishedUpdate struct {
	batchID string
	update  map[string]any
}

type recordingPublisher struct {
	updates []publishedUpdate
}

func (p *recordingPublisher) Publish(batchID string, update map[string]any) error {
	p.updates = append(p.updates, publishedUpdate{batchID: batchID, update: update})
	return nil
}

func newStatusConfig() (*WorkerConfig, *queryLog, *recordingPublisher) {
	db := &queryLog{}
	pub := &recordingPublisher{}
	return &WorkerConfig{DB: database.New(db), Updates: pub}, db, pub
}

func TestBeginBatch_CreatesBatchBeforeStatus(t *testing.T) {
	cfg, db, pub := newStatusConfig()
	batch := Batch{ID: uuid.New(), Files: []BatchFile{{ObjectKey: "a.pdf"}, {ObjectKey: "b.pdf"}}}

	beginBatch(cfg, batch)

	assert.Equal(t, []string{"CreateBatch", "UpdateBatchStatus"}, db.names)
	require.Len(t, pub.updates, 1)
	assert.Equal(t, batch.ID.String(), pub.updates[0].batchID)
	assert.Equal(t, "processing", pub.updates[0].update["status"])
}

func TestBeginBatch_WithoutDatabase(t *testing.T) {
	pub := &recordingPublisher{}
	cfg := &WorkerConfig{Updates: pub}

	beginBatch(cfg, Batch{ID: uuid.New()})

	require.Len(t, pub.updates, 1)
	assert.Equal(t, "processing", pub.updates[0].update["status"])
}

func TestRejectBatch_WithoutIDIsSilent(t *testing.T) {
	cfg, db, pub := newStatusConfig()

	rejectBatch(cfg, Batch{}, errors.New("unexpected end of JSON input"))

	assert.Empty(t, db.names)
	assert.Empty(t, pub.updates)
}

func TestRejectBatch_MarksBatchFailed(t *testing.T) {
	cfg, db, pub := newStatusConfig()
	id := uuid.New()

	rejectBatch(cfg, Batch{ID: id}, errors.New("batch has no files"))

	assert.Equal(t, []string{"UpdateBatchStatus"}, db.names)
	require.Len(t, pub.updates, 1)
	assert.Equal(t, id.String(), pub.updates[0].batchID)
	assert.Equal(t, "failed", pub.updates[0].update["status"])
}
