package repositoryImp

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"nolabor/entities"
	"nolabor/pkg/analysis/repository"
)

type analysisRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.AnalysisRepository { return &analysisRepo{db} }

func (r *analysisRepo) Create(a *entities.Analysis) error { return r.db.Create(a).Error }

func (r *analysisRepo) FindByID(id, uid string) (*entities.Analysis, error) {
	var a entities.Analysis
	if err := r.db.Where("id = ? AND user_id = ?", id, uid).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *analysisRepo) LatestByProject(uid, projectName, analysisType string) (*entities.Analysis, error) {
	q := r.db.Where("user_id = ? AND project_name = ?", uid, projectName)
	if analysisType != "" {
		q = q.Where("analysis_type = ?", analysisType)
	}
	var a entities.Analysis
	err := q.Order("sequence_id DESC").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *analysisRepo) RecentByProject(uid, projectName string, since time.Time) (*entities.Analysis, error) {
	var a entities.Analysis
	err := r.db.Where("user_id = ? AND project_name = ? AND created_at >= ?", uid, projectName, since).
		Order("sequence_id DESC").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *analysisRepo) ListByUser(uid string) ([]entities.Analysis, error) {
	var as []entities.Analysis
	if err := r.db.Select("id", "sequence_id", "user_id", "project_name", "project_description", "team_size", "analysis_type", "created_at").
		Where("user_id = ?", uid).Order("sequence_id DESC").Find(&as).Error; err != nil {
		return nil, err
	}
	return as, nil
}
