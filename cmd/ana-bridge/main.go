package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/softclay/ana-bridge/internal/api"
	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/usecase"
	"github.com/softclay/ana-bridge/internal/conf"
	"github.com/softclay/ana-bridge/internal/data"
	"github.com/softclay/ana-bridge/internal/infra/gateway"
	"github.com/softclay/ana-bridge/internal/infra/groq"
	"github.com/softclay/ana-bridge/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Persistence
	repos, err := data.NewRepositories(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer repos.Close()
	fmt.Printf("[Bridge] State DB: %s\n", cfg.Storage.DBPath)

	// Collaborators
	generator := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.Model)
	client := gateway.NewClient(cfg.Gateway.URL)
	supervisor := gateway.NewSupervisor(client.Connect, cfg.Gateway.ReconnectDelay)
	credStore := gateway.NewCredStore(cfg.Gateway.CredsPath)

	// Core
	affect := domain.NewAffectEngine(
		domain.NewLexiconClassifier(cfg.Persona.Lexicons.Triggers, cfg.Persona.Lexicons.Apologies),
		cfg.ToAffectConfig(),
	)
	dedup := usecase.NewDedupCache(cfg.Persona.DedupWindow())
	cooldown := usecase.NewCooldownTable(cfg.Persona.Cooldown())
	sessionUC := usecase.NewSessionUsecase(repos.Control, client, dedup, cooldown, cfg.ToSessionConfig(), client.SelfID)
	replyUC := usecase.NewReplyUsecase(repos.Memory, generator, client, affect, cfg.ToReplyConfig())
	convSvc := service.NewConversationService(sessionUC, replyUC)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	convSvc.Start(ctx)
	client.OnMessageBatch(convSvc.HandleBatch)
	client.OnConnectionUpdate(supervisor.HandleUpdate)
	client.OnCredsUpdate(func(raw json.RawMessage) {
		if err := credStore.Save(raw); err != nil {
			fmt.Printf("[Bridge] Credential persist failed: %v\n", err)
		}
	})

	// Health server + keep-alive
	apiServer := api.NewServer(supervisor, repos.Memory, cfg.HTTP.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[Bridge] API server error: %v\n", err)
		}
	}()
	go api.Keepalive(ctx, cfg.HTTP.Port, cfg.HTTP.KeepaliveInterval)
	fmt.Printf("[Bridge] HTTP server started on port %d\n", cfg.HTTP.Port)

	// Transport
	if err := supervisor.Start(ctx); err != nil {
		log.Fatalf("Failed to start gateway connection: %v", err)
	}
	fmt.Printf("[Bridge] Gateway: %s\n", cfg.Gateway.URL)

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	apiServer.Stop()
	client.Close()
}
