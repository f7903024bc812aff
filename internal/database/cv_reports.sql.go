package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const insertCvReport = `-- name: InsertCvReport :exec
INSERT INTO cv_reports (
batch_id, name, email, phone, education, experience, skills, anomalies, valid, file)
VALUES ( $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type InsertCvReportParams struct {
	BatchID    uuid.UUID
	Name       string
	Email      string
	Phone      string
	Education  string
	Experience string
	Skills     string
	Anomalies  []string
	Valid      bool
	File       string
}

func (q *Queries) InsertCvReport(ctx context.Context, arg InsertCvReportParams) error {
	_, err := q.db.ExecContext(ctx, insertCvReport,
		arg.BatchID,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.Education,
		arg.Experience,
		arg.Skills,
		pq.Array(arg.Anomalies),
		arg.Valid,
		arg.File,
	)
	return err
}
