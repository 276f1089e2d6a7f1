package utils

import (
	"context"
	"errors"
	"time"

	"job-portal/backend/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// contextKey 是儲存在 context 中的鍵的型別
type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UserRoleKey contextKey = "userRole"
)

// GetUserIDFromContext 從 context 中提取使用者 ID
func GetUserIDFromContext(ctx context.Context) (primitive.ObjectID, error) {
	userID, ok := ctx.Value(UserIDKey).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	return userID, nil
}

// GetUserRoleFromContext 從 context 中提取使用者角色
func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	role, ok := ctx.Value(UserRoleKey).(models.UserRole)
	if !ok {
		return "", errors.New("user role not found in context")
	}
	return role, nil
}

// ParseToken 從 JWT token 中提取使用者 ID 與角色
func ParseToken(tokenString string, jwtSecret string) (primitive.ObjectID, models.UserRole, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return primitive.NilObjectID, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, "", errors.New("invalid token claims")
	}

	userIDStr, ok := claims["userId"].(string)
	if !ok {
		return primitive.NilObjectID, "", errors.New("user ID not found in token claims")
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, "", errors.New("invalid user ID format in token")
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return primitive.NilObjectID, "", errors.New("role not found in token claims")
	}

	return userID, models.UserRole(roleStr), nil
}

// GenerateJWT 為用戶生成 JWT Token
func GenerateJWT(userID primitive.ObjectID, name string, role models.UserRole, secret string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(), // 將 ObjectID 轉換為 Hex 字串儲存
		"name":   name,
		"role":   string(role),
		"exp":    time.Now().Add(time.Hour * 24).Unix(), // Token 24 小時後過期
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 使用您配置的 JWT_SECRET 簽名
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return tokenString, nil
}
