// pkg/modelcfg/modelcfg.go

// Package modelcfg reads the model_configs table at call time so model
// choice per logical site (main_analysis, chat, fallback) stays editable
// at runtime without a restart.
package modelcfg

import (
	"gorm.io/gorm"

	"nolabor/entities"
	"nolabor/pkg/ai"
)

const (
	SiteMainAnalysis = "main_analysis"
	SiteChat         = "chat"
	SiteFallback     = "fallback"
)

type Repository interface {
	// Params returns the active config for the site, or def when no
	// active row exists.
	Params(site string, def ai.ModelParams) ai.ModelParams
}

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) Repository { return &repo{db} }

func (r *repo) Params(site string, def ai.ModelParams) ai.ModelParams {
	var mc entities.ModelConfig
	if err := r.db.Where("config_name = ? AND is_active = ?", site, true).First(&mc).Error; err != nil {
		return def
	}
	p := ai.ModelParams{
		ModelName:   mc.ModelName,
		Temperature: mc.Temperature,
		MaxTokens:   mc.MaxTokens,
		TimeoutSec:  mc.TimeoutSec,
	}
	if p.ModelName == "" {
		p.ModelName = def.ModelName
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = def.MaxTokens
	}
	if p.TimeoutSec <= 0 {
		p.TimeoutSec = def.TimeoutSec
	}
	return p
}

// Seed inserts the default rows for all logical sites when absent.
func Seed(db *gorm.DB, defaultModel string) error {
	for _, site := range []string{SiteMainAnalysis, SiteChat, SiteFallback} {
		mc := entities.ModelConfig{
			ConfigName:  site,
			ModelName:   defaultModel,
			Temperature: 0.7,
			MaxTokens:   2500,
			TimeoutSec:  45,
			IsActive:    true,
		}
		if err := db.Where(entities.ModelConfig{ConfigName: site}).
			FirstOrCreate(&mc).Error; err != nil {
			return err
		}
	}
	return nil
}
