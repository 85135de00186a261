package project

import (
	"log/slog"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/attachment"
	"freelance-marketplace/internal/global/engine"
	"freelance-marketplace/internal/global/logger"
)

var (
	log    *slog.Logger
	svc    *engagement.Service
	bucket *attachment.Bucket
)

type ModuleProject struct{}

func (p *ModuleProject) GetName() string {
	return "Project"
}

func (p *ModuleProject) Init() {
	log = logger.New("Project")
	svc = engine.Service
	bucket = attachment.NewBucket(config.Get().S3)
}
