package utils

import "github.com/google/uuid"

// NewID 账号/资源主键统一用 UUID 字符串
func NewID() string { return uuid.NewString() }
