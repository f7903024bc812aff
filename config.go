package main

import (
	"log"
	"os"
	"strconv"
)

const (
	defaultExcelFile      = "all_cvs_dataset.xlsx"
	defaultWorkerCount    = 3
	defaultTableObjectKey = "exports/all_cvs_dataset.xlsx"
)

type Config struct {
	ExcelFile      string
	RabbitMQURL    string
	WorkerCount    int
	DBURL          string
	TableObjectKey string
	R2             R2Config
}

// LoadConfig reads the environment. Nothing here is required for local mode;
// worker mode checks its own requirements in RequireWorker.
func LoadConfig() Config {
	return Config{
		ExcelFile:      getEnv("EXCEL_FILE", defaultExcelFile),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", defaultWorkerCount),
		DBURL:          os.Getenv("DB_URL"),
		TableObjectKey: getEnv("TABLE_OBJECT_KEY", defaultTableObjectKey),
		R2: R2Config{
			AccountID: os.Getenv("R2_ACCCOUNT_ID"),
			Bucket:    os.Getenv("R2_BUCKET"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
		},
	}
}

func (c Config) RequireWorker() {
	if c.RabbitMQURL == "" {
		log.Fatal("empty RABBITMQ_URL in env")
	}
	if c.R2.AccountID == "" {
		log.Fatal("empty R2_ACCCOUNT_ID in environment")
	}
	if c.R2.Bucket == "" {
		log.Fatal("empty R2_BUCKET in environment")
	}
	if c.R2.SecretKey == "" {
		log.Fatal("empty R2_SECRET_KEY in environment")
	}
	if c.R2.AccessKey == "" {
		log.Fatal("empty R2_ACCESS_KEY in environment")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
