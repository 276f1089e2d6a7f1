package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole 定義使用者在求職平台上的角色
type UserRole string

const (
	RoleApplicant  UserRole = "APPLICANT"  // 求職者
	RoleHR         UserRole = "HR"         // 人資
	RoleDepartment UserRole = "DEPARTMENT" // 系所單位
	RoleAdmin      UserRole = "ADMIN"      // 管理員 (只能由腳本建立，不開放註冊)
)

// ValidRegistrationRole 檢查角色是否允許透過公開註冊取得
func ValidRegistrationRole(role UserRole) bool {
	switch role {
	case RoleApplicant, RoleHR, RoleDepartment:
		return true
	}
	return false
}

// RegisterRequest 結構體用於處理註冊請求
type RegisterRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// ErrorResponse 結構體用於返回 JSON 格式的錯誤訊息
type ErrorResponse struct {
	Message string `json:"message"`
}

// User 結構體定義了使用者資料的欄位
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"` // MongoDB 的唯一 ID
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email" unique:"true"` // 使用者 Email
	Password  string             `bson:"password" json:"-"`                // 儲存哈希後的密碼，JSON 輸出時忽略
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// 註：`Password` 欄位在儲存到資料庫前會被哈希，`json:"-"` 表示在 JSON 序列化時忽略此欄位，避免將密碼暴露出去。
// `unique:"true"` 是一個示意，實際的唯一索引會在 MongoDB 操作時建立。
