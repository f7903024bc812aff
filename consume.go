package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/cvanomaly/internal/cv"
	"github.com/muhammadolammi/cvanomaly/internal/database"
	"github.com/muhammadolammi/cvanomaly/internal/sheet"
	"github.com/streadway/amqp"
)

const batchQueue = "cv_batches"

// retry retries a function up to `attempts` times with a growing pause
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		wait := time.Duration(500*(i+1)) * time.Millisecond
		time.Sleep(wait)
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func decodeBatch(body []byte) (Batch, error) {
	batch := Batch{}
	if err := json.Unmarshal(body, &batch); err != nil {
		return batch, fmt.Errorf("error unmarshalling batch: %w", err)
	}
	if len(batch.Files) == 0 {
		return batch, errors.New("batch has no files")
	}
	for i, f := range batch.Files {
		if f.ObjectKey == "" {
			return batch, fmt.Errorf("file %d has no object_key", i)
		}
		if f.Filename == "" {
			batch.Files[i].Filename = f.ObjectKey
		}
	}
	return batch, nil
}

// processBatch downloads every file of the batch, builds the reports in input
// order, then folds them into the persisted table. Per-file failures are kept
// in the result and never stop the batch; a table failure is returned together
// with the in-memory result.
func processBatch(ctx context.Context, batch Batch, workerConfig *WorkerConfig) (BatchResult, error) {
	result := BatchResult{
		BatchID:   batch.ID,
		CreatedAt: time.Now(),
	}
	awsClient := newR2Client(*workerConfig.AwsConfig, workerConfig.R2.AccountID)

	for _, file := range batch.Files {
		// ✅ Retry downloading file (network failures are transient)
		fileBytes, err := retry(3, func() ([]byte, error) {
			return DownloadFromR2(ctx, awsClient, workerConfig.R2.Bucket, file.ObjectKey)
		})
		if err != nil {
			log.Printf("⚠️ Failed to download %s after retries: %v", file.ObjectKey, err)
			result.Errors = append(result.Errors, FileError{File: file.Filename, Error: fmt.Sprintf("file download error: %v", err)})
			continue
		}

		report, err := ProcessDocument(Document{Filename: file.Filename, Mime: file.Mime, Data: fileBytes})
		if err != nil {
			log.Printf("⚠️ %v", err)
			result.Errors = append(result.Errors, FileError{File: file.Filename, Error: err.Error()})
			continue
		}
		result.Reports = append(result.Reports, report)
	}
	log.Printf("batch %s: %d reports, %d failed files", batch.ID, len(result.Reports), len(result.Errors))

	if workerConfig.DB != nil {
		mirrorReports(ctx, workerConfig.DB, batch, result.Reports)
	}

	if _, err := workerConfig.Table.Append(ctx, result.Reports); err != nil {
		return result, err
	}

	table, err := workerConfig.Table.Export(ctx)
	if err != nil {
		return result, err
	}
	_, err = retry(3, func() (any, error) {
		return nil, UploadToR2(ctx, awsClient, workerConfig.R2.Bucket, workerConfig.TableObjectKey, sheet.ContentTypeXLSX, table)
	})
	if err != nil {
		return result, fmt.Errorf("failed to upload table after retries: %w", err)
	}
	return result, nil
}

// mirrorReports copies the batch's reports into postgres. The spreadsheet
// stays the source of truth, so failures are only logged.
func mirrorReports(ctx context.Context, db *database.Queries, batch Batch, reports []cv.DocumentReport) {
	for _, r := range reports {
		_, err := retry(3, func() (any, error) {
			return nil, db.InsertCvReport(ctx, database.InsertCvReportParams{
				BatchID:    batch.ID,
				Name:       r.Name,
				Email:      r.Email,
				Phone:      r.Phone,
				Education:  r.Education,
				Experience: r.Experience,
				Skills:     r.Skills,
				Anomalies:  r.Anomalies,
				Valid:      r.Valid,
				File:       r.File,
			})
		})
		if err != nil {
			log.Printf("⚠️ failed to save report for %s after retries: %v", r.File, err)
		}
	}
}

// beginBatch records the batch row before any status update refers to it.
func beginBatch(workerConfig *WorkerConfig, batch Batch) {
	if workerConfig.DB != nil {
		err := workerConfig.DB.CreateBatch(context.Background(), database.CreateBatchParams{
			ID:        batch.ID,
			Status:    "processing",
			FileCount: int32(len(batch.Files)),
		})
		if err != nil {
			log.Printf("⚠️ failed to record batch %s: %v", batch.ID, err)
		}
	}
	setBatchStatus(workerConfig, batch, "processing", "batch started", nil)
}

// rejectBatch reports a message that could not be decoded. Without a batch
// id there is nobody to tell.
func rejectBatch(workerConfig *WorkerConfig, batch Batch, err error) {
	log.Printf("dropping batch message. err: %v", err)
	if batch.ID == uuid.Nil {
		return
	}
	setBatchStatus(workerConfig, batch, "failed", "invalid batch message", nil)
}

func setBatchStatus(workerConfig *WorkerConfig, batch Batch, status, message string, extra map[string]any) {
	if workerConfig.DB != nil {
		err := workerConfig.DB.UpdateBatchStatus(context.Background(), database.UpdateBatchStatusParams{
			Status: status,
			ID:     batch.ID,
		})
		if err != nil {
			log.Printf("failed to update batch status in db. batch_id: %s, err: %v", batch.ID, err)
		}
	}
	update := map[string]any{
		"batch_id":  batch.ID,
		"status":    status,
		"message":   message,
		"timestamp": time.Now(),
	}
	for k, v := range extra {
		update[k] = v
	}
	if err := workerConfig.Updates.Publish(batch.ID.String(), update); err != nil {
		log.Println("failed to publish update:", err)
	}
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	//    to consume message on the queue
	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		log.Fatal("error dialling rabbitmq: " + err.Error())
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("error connecting to rabbitmq channel: " + err.Error())
	}
	defer ch.Close()
	_, err = ch.QueueDeclare(
		batchQueue, // queue name
		true,       // durable (survives broker restarts)
		false,      // auto-delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	msgs, err := ch.Consume(
		batchQueue, // queue name
		"",         // consumer tag
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Fatal("error consuming rabbitmq message: " + err.Error())
	}

	for msg := range msgs {
		batch, err := decodeBatch(msg.Body)
		if err != nil {
			rejectBatch(workerConfig, batch, err)
			continue
		}
		log.Printf("Worker %d processing batch. batch_id: %s", id+1, batch.ID)
		beginBatch(workerConfig, batch)

		result, err := processBatch(context.Background(), batch, workerConfig)
		if err != nil {
			log.Printf("error saving table for batch_id: %v. err: %v", batch.ID, err)
			// the batch's own rows are still delivered with the failure
			setBatchStatus(workerConfig, batch, "failed", "table update failed", map[string]any{
				"reports": result.Reports,
				"errors":  result.Errors,
			})
			continue
		}

		setBatchStatus(workerConfig, batch, "completed", "batch completed", map[string]any{
			"reports":   result.Reports,
			"errors":    result.Errors,
			"table_key": workerConfig.TableObjectKey,
		})
	}
}

func (workerConfig *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		log.Println("worker id ", i+1, "started")
		go worker(i, workerConfig, &wg)
	}
	wg.Wait() // block until all workers finish
}
