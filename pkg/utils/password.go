package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 输出固定以 "$2" 开头（$2a/$2b/$2y）
const bcryptPrefix = "$2"

func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// EnsurePasswordHash 落库前调用：已是 bcrypt 哈希则原样返回，防止二次哈希
func EnsurePasswordHash(v string) string {
	if strings.HasPrefix(v, bcryptPrefix) {
		return v
	}
	return HashPassword(v)
}

// IsPasswordHash 是否已为 bcrypt 格式
func IsPasswordHash(v string) bool { return strings.HasPrefix(v, bcryptPrefix) }
