package repositoryImp

import (
	"gorm.io/gorm"

	"nolabor/entities"
	"nolabor/pkg/user/repository"
)

type userRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.UserRepository { return &userRepo{db} }

func (r *userRepo) Ensure(uid string) (*entities.User, error) {
	var u entities.User
	err := r.db.Where(entities.User{Phone: uid}).
		Attrs(entities.User{Active: true, AIQuota: 10}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ConsumeQuota(uid string) (bool, error) {
	res := r.db.Model(&entities.User{}).
		Where("phone = ? AND used_quota < ai_quota", uid).
		Update("used_quota", gorm.Expr("used_quota + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
