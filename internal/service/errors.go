package service

import (
	"errors"

	"go-identity-platform/internal/core/auth"
)

// 服务层错误全集；handler 按此映射业务码，内部一律不吞不重试
var (
	ErrAlreadyExists        = errors.New("account already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrNotFound             = errors.New("account not found")
	ErrRefreshMismatch      = errors.New("refresh token mismatch")

	// ErrInvalidToken 原样透传 codec 的校验失败
	ErrInvalidToken = auth.ErrInvalidToken
)
