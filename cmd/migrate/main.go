package main

import (
	"log"

	"cybot-be/internal/config"
	"cybot-be/internal/model"
	"cybot-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.WithLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running migration...")
	if err := database.Migrate(db, &model.DocumentChunk{}); err != nil {
		log.Fatal("Error: ", err)
	}

	// HNSW keeps similarity search fast once the index grows.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks USING hnsw (embedding_value vector_cosine_ops);`).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("Migration completed")
}
