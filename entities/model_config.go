package entities

import "time"

// ModelConfig selects the LLM parameters per logical call site
// (main_analysis, chat, fallback). Rows are editable at runtime; the
// in-code default applies when no active row exists.
type ModelConfig struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ConfigName  string  `gorm:"uniqueIndex" json:"config_name"`
	ModelName   string  `json:"model_name"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TimeoutSec  int     `json:"timeout"`
	// no gorm default: a default-tagged bool is dropped from INSERTs when
	// false, which would silently activate rows created as inactive
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
