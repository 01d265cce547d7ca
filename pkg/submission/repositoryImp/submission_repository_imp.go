package repositoryImp

import (
	"gorm.io/gorm"

	"nolabor/entities"
	"nolabor/pkg/submission/repository"
)

type submissionRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.SubmissionRepository { return &submissionRepo{db} }

func (r *submissionRepo) Create(s *entities.Submission) error { return r.db.Create(s).Error }

func (r *submissionRepo) FindByID(id, uid string) (*entities.Submission, error) {
	var s entities.Submission
	if err := r.db.Where("id = ? AND user_id = ?", id, uid).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) MarkProcessing(id string) (bool, error) {
	res := r.db.Model(&entities.Submission{}).
		Where("id = ? AND status = ?", id, entities.SubmissionPending).
		Update("status", entities.SubmissionProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *submissionRepo) SetStatus(id, status string) error {
	return r.db.Model(&entities.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submissionRepo) SupersedePending(uid string) error {
	return r.db.Model(&entities.Submission{}).
		Where("user_id = ? AND status IN ?", uid, []string{entities.SubmissionPending, entities.SubmissionProcessing}).
		Update("status", entities.SubmissionSuperseded).Error
}
