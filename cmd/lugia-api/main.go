package main

import (
	"context"
	"net/http"
	"os"

	httpadapter "github.com/lugia-ai/lugia/internal/adapters/http"
	"github.com/lugia-ai/lugia/internal/adapters/llm"
	firestorestore "github.com/lugia-ai/lugia/internal/adapters/storage/firestore"
	memstore "github.com/lugia-ai/lugia/internal/adapters/storage/memory"
	s3store "github.com/lugia-ai/lugia/internal/adapters/storage/s3"
	sqlitestore "github.com/lugia-ai/lugia/internal/adapters/storage/sqlite"
	"github.com/lugia-ai/lugia/internal/app/conversation"
	"github.com/lugia-ai/lugia/internal/cache"
	"github.com/lugia-ai/lugia/internal/config"
	"github.com/lugia-ai/lugia/internal/domain"
	"github.com/lugia-ai/lugia/internal/observability"
)

func main() {
	ctx := context.Background()
	log := observability.Logger()

	cfg := config.Load()

	// Storage backend
	var store domain.BlobStore
	var err error

	switch cfg.StorageBackend {
	case "s3":
		log.Info("using s3 storage", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		store, err = s3store.NewStore(s3store.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	case "firestore":
		log.Info("using firestore storage", "project", cfg.GCPProjectID)
		store, err = firestorestore.NewStore(ctx, cfg.GCPProjectID)
	case "sqlite":
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		store, err = sqlitestore.NewStore(cfg.SQLitePath)
	default:
		log.Info("using in-memory storage")
		store = memstore.NewStore()
	}
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Model backend
	var client domain.ModelClient
	if cfg.UseMockLLM {
		log.Info("using mock model backend")
		client = llm.NewMockClient()
	} else {
		switch {
		case cfg.GCPProjectID != "" && os.Getenv("OPENAI_API_KEY") == "":
			log.Info("using vertex model backend")
			client, err = llm.NewVertexClient(ctx)
		default:
			log.Info("using openai model backend")
			client, err = llm.NewOpenAIClient()
		}
		if err != nil {
			log.Error("failed to initialize model backend", "error", err)
			os.Exit(1)
		}
	}
	model := llm.NewManager(client)

	histCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Error("failed to initialize conversation cache", "error", err)
		os.Exit(1)
	}

	systemPrompt := conversation.LoadSystemPrompt(cfg.SystemPromptFile)
	svc := conversation.NewService(store, histCache, systemPrompt)

	handler := httpadapter.NewServer(svc, model, cfg.TokenLimit, cfg.StaticDir)

	addr := ":" + cfg.Port
	log.Info("lugia api listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
