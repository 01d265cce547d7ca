package entities

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Phone        string `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	Active       bool   `gorm:"default:true" json:"active"`
	AIQuota      int    `gorm:"default:10" json:"ai_quota"`
	UsedQuota    int    `gorm:"default:0" json:"used_quota"`

	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (u *User) QuotaLeft() int {
	left := u.AIQuota - u.UsedQuota
	if left < 0 {
		return 0
	}
	return left
}
