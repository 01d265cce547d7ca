package entities

import "time"

// Analysis classification tags.
const (
	AnalysisReal              = "real"
	AnalysisFallback          = "fallback"
	AnalysisEmergencyFallback = "emergency_fallback"
)

type Analysis struct {
	ID                 string `gorm:"primaryKey;size:36" json:"id"`
	SequenceID         int    `gorm:"autoIncrement;uniqueIndex" json:"sequence_id"`
	UserID             string `gorm:"index" json:"user_id"`
	FormData           string `json:"form_data"`   // Submission snapshot at analysis time
	ResultData         string `json:"result_data"` // Plan JSON
	ProjectName        string `gorm:"index" json:"project_name"`
	ProjectDescription string `json:"project_description"`
	TeamSize           int    `json:"team_size"`
	AnalysisType       string `gorm:"index" json:"analysis_type"`

	CreatedAt time.Time `json:"created_at"`
}
