package api

import (
	"log/slog"

	"github.com/shaiso/Anketa/internal/mq"
	"github.com/shaiso/Anketa/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	formRepo  *repo.FormRepo
	entryRepo *repo.EntryRepo
	publisher *mq.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	FormRepo  *repo.FormRepo
	EntryRepo *repo.EntryRepo
	Publisher *mq.Publisher
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		formRepo:  cfg.FormRepo,
		entryRepo: cfg.EntryRepo,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
