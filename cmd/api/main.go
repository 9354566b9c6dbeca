package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/darlyn-ai/darlyn/backend/internal/config"
	"github.com/darlyn-ai/darlyn/backend/internal/events"
	"github.com/darlyn-ai/darlyn/backend/internal/handler"
	"github.com/darlyn-ai/darlyn/backend/internal/service/ai"
	"github.com/darlyn-ai/darlyn/backend/internal/service/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/service/conversation"
	"github.com/darlyn-ai/darlyn/backend/internal/service/profile"
	"github.com/darlyn-ai/darlyn/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("failed to initialize local store: %v", err)
	}
	log.Printf("persisting chat history under %s", cfg.Storage.DataDir)

	sessionRepo := chat.NewService(st)
	profileSvc := profile.NewService(st)
	hub := events.NewHub()

	// The answering capability is optional; without credentials every turn
	// takes the failure path and the UI shows the generic notice.
	var answerer conversation.Answerer
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			answerer = aiSvc
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	conv := conversation.NewService(sessionRepo, answerer, hub)
	router := handler.NewRouter(sessionRepo, profileSvc, conv, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Darlyn backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
