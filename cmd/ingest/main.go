package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/fatih/color"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/implementation"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/ingest"
)

// Indexes local files straight into the vector store, bypassing the HTTP
// surface. Useful for seeding a fresh database.
func main() {
	migrate := flag.Bool("migrate", false, "create or update the document_chunks table before indexing")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 && !*migrate {
		color.Yellow("usage: ingest [-migrate] <file.txt|file.md> ...")
		os.Exit(1)
	}

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if *migrate {
		if err := gormDB.AutoMigrate(&model.DocumentChunk{}); err != nil {
			color.Red("migration failed: %v", err)
			os.Exit(1)
		}
		color.Green("schema up to date")
	}

	sysLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)

	embedder := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	indexer := ingest.NewIndexer(
		implementation.NewChunkRepository(gormDB),
		embedder,
		ingest.Config{ChunkSize: cfg.Ingest.ChunkSize, ChunkOverlap: cfg.Ingest.ChunkOverlap},
		sysLogger,
	)

	ctx := context.Background()
	failures := 0
	for _, path := range paths {
		result, err := indexer.IndexFile(ctx, path)
		if err != nil {
			color.Red("✗ %s: %v", path, err)
			failures++
			continue
		}
		color.Green("✓ %s: %d chunks indexed (doc %s)", result.Source, result.Indexed, result.DocID[:8])
	}

	if failures > 0 {
		os.Exit(1)
	}
}
