package skill

import (
	"log/slog"

	"freelance-marketplace/internal/global/logger"
)

var log *slog.Logger

type ModuleSkill struct{}

func (m *ModuleSkill) GetName() string {
	return "Skill"
}

func (m *ModuleSkill) Init() {
	log = logger.New("Skill")
}
