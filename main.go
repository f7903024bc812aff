package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"
	"github.com/muhammadolammi/cvanomaly/internal/database"
	"github.com/muhammadolammi/cvanomaly/internal/sheet"
	"github.com/streadway/amqp"
)

func main() {
	_ = godotenv.Load()
	cfg := LoadConfig()
	table := sheet.NewTable(sheet.NewXLSXStore(cfg.ExcelFile))

	// files on the command line: process them here and exit
	if files := os.Args[1:]; len(files) > 0 {
		if err := runLocal(context.Background(), files, table, os.Stdout); err != nil {
			log.Fatalf("failed to update table: %v", err)
		}
		fmt.Printf("✅ Data saved to %s\n", cfg.ExcelFile)
		return
	}

	cfg.RequireWorker()

	var dbqueries *database.Queries
	if cfg.DBURL != "" {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			log.Fatal("error opening db. err: ", err)
		}
		defer db.Close()
		dbqueries = database.New(db)
	} else {
		log.Println("DB_URL not set, reports will not be mirrored to postgres")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		log.Fatal("error creating aws config", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ. err:  %v", err)
	}
	defer conn.Close()

	workerConfig := WorkerConfig{
		DB:             dbqueries,
		R2:             &cfg.R2,
		AwsConfig:      &awsConfig,
		RABBITMQUrl:    cfg.RabbitMQURL,
		Updates:        amqpPublisher{conn: conn},
		Table:          table,
		TableObjectKey: cfg.TableObjectKey,
	}

	fmt.Printf("Starting %d workers consumer pool \n", cfg.WorkerCount)
	workerConfig.StartConsumerWorkerPool(cfg.WorkerCount)
}
