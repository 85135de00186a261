package proposal

import (
	"log/slog"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/engine"
	"freelance-marketplace/internal/global/logger"
)

var (
	log *slog.Logger
	svc *engagement.Service
)

type ModuleProposal struct{}

func (p *ModuleProposal) GetName() string {
	return "Proposal"
}

func (p *ModuleProposal) Init() {
	log = logger.New("Proposal")
	svc = engine.Service
}
