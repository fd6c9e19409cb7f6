package handlers

import (
	"log/slog"

	"github.com/edgard/ollamabot/internal/config"
	"github.com/edgard/ollamabot/internal/database"
	"github.com/edgard/ollamabot/internal/ollama"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Ollama ollama.Client
}
