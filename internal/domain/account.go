package domain

import (
	"context"
	"time"
)

// Status 账号状态机；新账号一律 active
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLocked   Status = "locked"
	StatusBanned   Status = "banned"
	StatusDeleted  Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLocked, StatusBanned, StatusDeleted:
		return true
	}
	return false
}

// Account 认证记录；删除是状态流转，不删行
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	Status       Status    `gorm:"size:16;not null;default:active" json:"status"`
	RefreshToken string    `gorm:"size:512" json:"-"` // 最近一次签发的 refresh token，至多一个有效
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// CanLogin 仅 active 可登录；其它状态即便密码正确也拒绝
func (a *Account) CanLogin() bool { return a.Status == StatusActive }

func (a *Account) IsDeleted() bool { return a.Status == StatusDeleted }

// MarkDeleted 自删：任意非 deleted 状态均可流转；refresh token 不清
//（deleted 状态下登录/刷新本就会失败）
func (a *Account) MarkDeleted() { a.Status = StatusDeleted }

// Resurrect 同邮箱重注册时复活：状态回 active，密码由调用方替换，会话全部作废
func (a *Account) Resurrect(newPassword string) {
	a.Status = StatusActive
	a.PasswordHash = newPassword // 落库前经 EnsurePasswordHash
	a.RefreshToken = ""
}

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, a *Account) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
