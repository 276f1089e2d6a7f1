package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"job-portal/backend/database"
	"job-portal/backend/email"
	"job-portal/backend/models"
	"job-portal/backend/utils"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt" // 用於密碼哈希
)

const resetTokenTTL = time.Hour // 重設密碼 token 的有效期限

// sendJSONError 統一發送 JSON 格式錯誤響應
func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	var errorResponse models.ErrorResponse
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errorResponse.Message = message
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("Failed to write error response: %v", err)
	}
}

// AuthHandler 聚合註冊/登入/重設密碼所需的依賴
type AuthHandler struct {
	JWTSecret string
	Redis     *redis.Client // 重設密碼 token 存放處
	Email     email.Sender
	AppURL    string // 重設密碼連結指向的前端網址
}

// RegisterUser 處理使用者註冊請求
func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		log.Printf("JSON decode error: %v", err)
		sendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	// 基本的輸入驗證
	if registerReq.Name == "" || registerReq.Email == "" || registerReq.Password == "" {
		sendJSONError(w, "Name, email, and password are required", http.StatusBadRequest)
		return
	}
	if len(registerReq.Password) < 6 {
		sendJSONError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}
	// 管理員帳號不開放註冊，只能由既有管理員指派
	if !models.ValidRegistrationRole(registerReq.Role) {
		sendJSONError(w, "Role must be APPLICANT, HR, or DEPARTMENT", http.StatusBadRequest)
		return
	}

	// 先檢查 Email，如果存在則直接返回
	_, err := database.FindUserByEmail(registerReq.Email)
	if err == nil {
		sendJSONError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != mongo.ErrNoDocuments { // 如果不是找不到文件，而是其他錯誤
		log.Printf("Error checking existing email: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// 哈希密碼
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerReq.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// 創建新使用者
	user := models.User{
		Name:      registerReq.Name,
		Email:     registerReq.Email,
		Password:  string(hashedPassword),
		Role:      registerReq.Role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 插入新使用者到資料庫
	result, err := database.InsertUser(user)
	if err != nil {
		log.Printf("Error inserting user: %v", err)
		sendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	log.Printf("User registered successfully: %v", result.InsertedID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated) // 201 Created
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User registered successfully",
		"id":      result.InsertedID.(primitive.ObjectID).Hex(),
	})
}

// LoginUser 處理使用者登入請求
func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.Printf("JSON decode error: %v", err)
		sendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	// 基本的輸入驗證
	if credentials.Email == "" || credentials.Password == "" {
		sendJSONError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	// 透過 Email 尋找使用者
	user, err := database.FindUserByEmail(credentials.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			sendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		} else {
			log.Printf("Error finding user by email: %v", err)
			sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	// 比較哈希後的密碼
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		sendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// 登入成功，簽發帶有角色聲明的 JWT
	token, err := utils.GenerateJWT(user.ID, user.Name, user.Role, h.JWTSecret)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Printf("User logged in successfully: %s", user.Email)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // 200 OK
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Login successful",
		"id":      user.ID.Hex(), // 將 ObjectID 轉換為 Hex 字串
		"name":    user.Name,
		"role":    string(user.Role),
		"token":   token,
	})
}

// ForgotPassword 處理忘記密碼請求：產生一次性 token 存入 Redis 並寄送重設連結。
// 無論帳號是否存在都回覆相同訊息，避免被用來列舉 Email。
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		sendJSONError(w, "Email is required", http.StatusBadRequest)
		return
	}

	genericResponse := func() {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "If an account exists, you will receive a password reset link",
		})
	}

	user, err := database.FindUserByEmail(req.Email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("Error finding user for password reset: %v", err)
		}
		genericResponse()
		return
	}

	// 產生隨機 token，Redis 只存哈希值，原始 token 只出現在信件裡
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Printf("Error generating reset token: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resetToken := hex.EncodeToString(raw)
	hashed := sha256.Sum256([]byte(resetToken))
	hashedToken := hex.EncodeToString(hashed[:])

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Redis.Set(ctx, "reset:"+hashedToken, user.ID.Hex(), resetTokenTTL).Err(); err != nil {
		log.Printf("Error storing reset token: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resetURL := h.AppURL + "/reset-password?token=" + resetToken
	if err := h.Email.Send(user.Email, "Reset Your Password",
		"Click the link below to reset your password. The link expires in one hour.\n\n"+resetURL); err != nil {
		log.Printf("Error sending reset email to %s: %v", user.Email, err)
		// 信寄不出去也不揭露帳號是否存在
	}

	genericResponse()
}

// ResetPassword 處理重設密碼請求：驗證並消耗一次性 token，更新密碼
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		sendJSONError(w, "Token and password are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		sendJSONError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	hashed := sha256.Sum256([]byte(req.Token))
	hashedToken := hex.EncodeToString(hashed[:])

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// GETDEL 讓 token 只能用一次
	userIDStr, err := h.Redis.GetDel(ctx, "reset:"+hashedToken).Result()
	if err == redis.Nil {
		sendJSONError(w, "Invalid or expired reset token", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("Error reading reset token: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		sendJSONError(w, "Invalid or expired reset token", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing new password: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := database.UpdateUserPassword(userID, string(hashedPassword)); err != nil {
		log.Printf("Error updating password for user %s: %v", userIDStr, err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Password has been reset"})
}
