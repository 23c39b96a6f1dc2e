package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/blindpanel/blindpanel-go/internal/config"
	"github.com/blindpanel/blindpanel-go/internal/debate"
	"github.com/blindpanel/blindpanel-go/internal/experiment"
	"github.com/blindpanel/blindpanel-go/internal/history"
	"github.com/blindpanel/blindpanel-go/internal/llm"
	"github.com/blindpanel/blindpanel-go/internal/logger"
	"github.com/blindpanel/blindpanel-go/internal/quota"
)

// defaultKeyEnv names the credential variable for providers whose config
// does not override it.
var defaultKeyEnv = map[llm.Provider]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

type submitRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Credentials come from the environment; a local .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	gw := llm.New(llm.Config{
		CallTimeout:      cfg.LLM.CallTimeout,
		AllowPlaceholder: cfg.LLM.AllowPlaceholder,
	}, loadCredentials(cfg))

	adapters := make(map[llm.Provider]experiment.Generator)
	catalog := make(experiment.Catalog)
	for name, pc := range cfg.Providers {
		provider, err := llm.ParseProvider(name)
		if err != nil {
			logger.L.Error("bad provider in config", "provider", name, "error", err)
			os.Exit(1)
		}
		adapters[provider] = quota.New(provider, gw, quota.Options{
			MinSpacing:  pc.MinSpacing,
			BaseDelay:   pc.BaseDelay,
			MaxAttempts: pc.MaxAttempts,
		})
		catalog[provider] = experiment.ModelRef{Model: pc.Model, Fallbacks: pc.Fallbacks}
	}

	primary, err := llm.ParseProvider(cfg.Experiment.PrimaryProvider)
	if err != nil {
		logger.L.Error("bad primary provider", "error", err)
		os.Exit(1)
	}
	secondary, err := llm.ParseProvider(cfg.Experiment.SecondaryProvider)
	if err != nil {
		logger.L.Error("bad secondary provider", "error", err)
		os.Exit(1)
	}

	caller := experiment.NewBackendCaller(adapters, catalog)
	engine := debate.NewEngine(caller)
	runners := experiment.DefaultRunners(engine, caller, primary, secondary, cfg.Experiment.Rounds)
	coordinator, err := experiment.NewCoordinator(runners, experiment.Options{
		Concurrent:       cfg.Experiment.Concurrent,
		MaxQuestionRunes: cfg.Experiment.MaxQuestionRunes,
	})
	if err != nil {
		logger.L.Error("failed to build coordinator", "error", err)
		os.Exit(1)
	}

	store := history.NewStore()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /runs", func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		logger.L.Info("submission received", "question_len", len(req.Question))

		run, err := coordinator.Run(r.Context(), req.Question)
		if err != nil {
			var verr *experiment.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
				return
			}
			logger.L.Error("run failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to run experiment"})
			return
		}
		store.Save(run)
		writeJSON(w, http.StatusCreated, run)
	})

	mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.List())
	})

	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		run, ok := store.Get(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	// Post-ranking reveal: only here does provenance leave the process.
	mux.HandleFunc("POST /runs/{id}/reveal", func(w http.ResponseWriter, r *http.Request) {
		run, ok := store.Get(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run.Reveal())
	})

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting server", "address", serverAddr)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		logger.L.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func loadCredentials(cfg *config.Config) llm.Credentials {
	creds := make(llm.Credentials)
	for name, pc := range cfg.Providers {
		provider, err := llm.ParseProvider(name)
		if err != nil {
			continue
		}
		env := pc.APIKeyEnv
		if env == "" {
			env = defaultKeyEnv[provider]
		}
		creds[provider] = os.Getenv(env)
	}
	return creds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warn("response encode error", "error", err)
	}
}
