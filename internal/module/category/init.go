package category

import (
	"log/slog"

	"freelance-marketplace/internal/global/logger"
)

var log *slog.Logger

type ModuleCategory struct{}

func (m *ModuleCategory) GetName() string {
	return "Category"
}

func (m *ModuleCategory) Init() {
	log = logger.New("Category")
}
