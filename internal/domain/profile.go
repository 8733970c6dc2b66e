package domain

import (
	"context"
	"time"
)

// Profile 业务侧用户资料；与 Account 通过 AuthID 一对一
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthID    string    `gorm:"uniqueIndex;size:36;not null" json:"authId"`
	Name      string    `gorm:"size:64" json:"name"`
	FirstName string    `gorm:"size:64" json:"firstName"`
	LastName  string    `gorm:"size:64" json:"lastName"`
	Deleted   bool      `gorm:"not null;default:false" json:"-"` // 软删标记，复活时翻回 false
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Profile) TableName() string { return "user_profiles" }

type ProfileRepository interface {
	FindByAuthID(ctx context.Context, authID string) (*Profile, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
