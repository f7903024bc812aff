package database

import (
	"context"

	"github.com/google/uuid"
)

const createBatch = `-- name: CreateBatch :exec
INSERT INTO batches (id, status, file_count)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING
`

type CreateBatchParams struct {
	ID        uuid.UUID
	Status    string
	FileCount int32
}

func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) error {
	_, err := q.db.ExecContext(ctx, createBatch, arg.ID, arg.Status, arg.FileCount)
	return err
}

const updateBatchStatus = `-- name: UpdateBatchStatus :exec
UPDATE batches 
SET status=$1, updated_at=CURRENT_TIMESTAMP
WHERE id=$2
`

type UpdateBatchStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateBatchStatus(ctx context.Context, arg UpdateBatchStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateBatchStatus, arg.Status, arg.ID)
	return err
}
