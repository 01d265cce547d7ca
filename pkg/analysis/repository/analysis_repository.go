package repository

import (
	"time"

	"nolabor/entities"
)

// AnalysisRepository is the durable result store. Rows are immutable once
// written; corrections always produce a new row.
type AnalysisRepository interface {
	Create(a *entities.Analysis) error
	FindByID(id, uid string) (*entities.Analysis, error)

	// LatestByProject returns the newest analysis of the given type for
	// a (user, project_name) pair; analysisType "" matches any type.
	LatestByProject(uid, projectName, analysisType string) (*entities.Analysis, error)

	// RecentByProject is the START_FAILED recovery probe: the newest
	// analysis for the project created after the cutoff, any type.
	RecentByProject(uid, projectName string, since time.Time) (*entities.Analysis, error)

	ListByUser(uid string) ([]entities.Analysis, error)
}
