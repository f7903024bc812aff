package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/muhammadolammi/cvanomaly/internal/cv"
	"github.com/muhammadolammi/cvanomaly/internal/database"
	"github.com/streadway/amqp"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

type WorkerConfig struct {
	DB             *database.Queries
	R2             *R2Config
	AwsConfig      *aws.Config
	RABBITMQUrl    string
	Updates        UpdatePublisher
	Table          ResultTable
	TableObjectKey string
}

// ResultTable is the persisted table as seen by the hosts. *sheet.Table
// implements it over a sheet.Store.
type ResultTable interface {
	Append(ctx context.Context, reports []cv.DocumentReport) ([]cv.DocumentReport, error)
	Export(ctx context.Context) ([]byte, error)
}

// UpdatePublisher sends batch status updates to whoever is watching.
type UpdatePublisher interface {
	Publish(batchID string, update map[string]any) error
}

type amqpPublisher struct {
	conn *amqp.Connection
}

func (p amqpPublisher) Publish(batchID string, update map[string]any) error {
	return publishBatchUpdate(p.conn, batchID, update)
}

// Document is one uploaded résumé.
type Document struct {
	Filename string
	Mime     string
	Data     []byte
}

// BatchFile points at a résumé stored in the bucket.
type BatchFile struct {
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
	Mime      string `json:"mime"`
}

// Batch is the message body consumed from the cv_batches queue.
type Batch struct {
	ID    uuid.UUID   `json:"batch_id"`
	Files []BatchFile `json:"files"`
}

// FileError records a document that produced no report.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchResult is what one run over a batch produced, in input order.
type BatchResult struct {
	BatchID   uuid.UUID           `json:"batch_id"`
	Reports   []cv.DocumentReport `json:"reports"`
	Errors    []FileError         `json:"errors,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
