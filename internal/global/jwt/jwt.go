package jwt

import (
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/model"

	"github.com/golang-jwt/jwt"
)

// Payload 签发 token 时携带的用户信息
type Payload struct {
	UserID uint       `json:"user_id"`
	Role   model.Role `json:"role"`
}

type Claims struct {
	Payload
	jwt.StandardClaims
}

// HasRole 判断调用者是否为指定角色之一
func (c *Claims) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func CreateToken(payload Payload) string {
	now := time.Now()
	claims := Claims{
		Payload: payload,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(config.Get().JWT.AccessExpire) * time.Second).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.Get().JWT.AccessSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// ParseToken 校验签名与过期时间
func ParseToken(token string) (*Claims, bool) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	return claims, true
}
