package project

import "time"

// ProjectModel 外部项目挂接；UserID 为属主账号 ID
type ProjectModel struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	UserID      string `gorm:"index;size:36" json:"userId"`
	ExternalID  string `gorm:"size:64;not null" json:"externalId" binding:"required,max=64"`
	Name        string `gorm:"size:128" json:"name" binding:"omitempty,max=128"`
	Description string `gorm:"size:512" json:"description" binding:"omitempty,max=512"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProjectModel) TableName() string { return "user_external_projects" }
