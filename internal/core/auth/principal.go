package auth

import "github.com/gin-gonic/gin"

// Principal 请求级身份（access token 校验后得到），不落库、不跨请求
type Principal struct {
	AccountID string
	Email     string
}

const principalKey = "principal"

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom 未认证请求返回 ok=false
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
