package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/advisory"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/config"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/emergency"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/history"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/httpapi"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/llm"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/nlp"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/report"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

func main() {
	cfg := config.Load()

	var (
		addr   = flag.String("addr", cfg.Addr, "HTTP listen address")
		dbPath = flag.String("db", cfg.DBPath, "SQLite database path for assessment history")
	)
	flag.Parse()

	caller, err := llm.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatalf("trip-safety llm init failed: %v", err)
	}

	store, err := history.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("trip-safety history init failed: %v", err)
	}
	defer store.Close()

	fetcher := lookup.NewClient(lookup.Config{
		APIKey:  cfg.SerperAPIKey,
		BaseURL: cfg.SerperBaseURL,
	})

	pipeline := risk.NewPipeline(nlp.NewExtractor(nil), fetcher, caller)
	handler := httpapi.NewServer(httpapi.Options{
		Assessor:   pipeline,
		Advisor:    advisory.NewAgent(caller),
		Planner:    emergency.NewAgent(caller),
		Store:      store,
		Renderer:   report.NewChromiumPDFRenderer(),
		AdminToken: cfg.AdminToken,
		MaxInput:   cfg.MaxInputChars,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Printf("trip-safety listening on %s (model=%s, db=%s)", *addr, caller.ModelName(), *dbPath)
	srv := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
