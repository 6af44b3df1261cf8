package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret []byte

// InitJWTSecret 從環境變數載入 JWT 密鑰，沒設定時用開發用預設值
func InitJWTSecret() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET not set, using insecure default (development only)")
		secret = "car-parking-dev-secret"
	}
	JWTSecret = []byte(secret)
}

// GenerateToken 簽發帶 member_id 與 role 的 token，24 小時後過期
func GenerateToken(memberID int, role string) (string, error) {
	claims := jwt.MapClaims{
		"member_id": memberID,
		"role":      role,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
