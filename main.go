package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-portal/backend/chat"
	"job-portal/backend/config"
	"job-portal/backend/database"
	"job-portal/backend/email"
	"job-portal/backend/handlers"
	"job-portal/backend/middleware"
	"job-portal/backend/models"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors" // 引入 CORS 庫
)

func main() {
	cfg := config.LoadConfig()

	database.ConnectMongoDB(cfg.MongoDBURI, cfg.DBName)
	defer database.DisconnectMongoDB()

	// Redis 同時承載聊天室的在線名單/訊息日誌與重設密碼 token
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancelPing()
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	cancelPing()
	log.Println("Connected to Redis successfully!")
	defer redisClient.Close()

	// 聊天核心：單一 Hub 迴圈負責所有聊天室的註冊與廣播
	chatStore := chat.NewRedisStore(redisClient, cfg.ChatHistoryLimit)
	hub := chat.NewHub()
	go hub.Run()
	chatHandler := chat.NewHandler(hub, chatStore)

	authHandler := &handlers.AuthHandler{
		JWTSecret: cfg.JWTSecret,
		Redis:     redisClient,
		Email:     email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom),
		AppURL:    cfg.AppURL,
	}

	router := mux.NewRouter()

	// 健康檢查路由
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Backend is running!")
	}).Methods("GET")

	// 公開 API 路由
	router.HandleFunc("/register", authHandler.RegisterUser).Methods("POST")
	router.HandleFunc("/login", authHandler.LoginUser).Methods("POST")
	router.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods("POST")
	router.HandleFunc("/reset-password", authHandler.ResetPassword).Methods("POST")
	router.HandleFunc("/jobs", handlers.GetJobs).Methods("GET")
	router.HandleFunc("/jobs/{id}", handlers.GetJob).Methods("GET")

	// WebSocket 連線 (加入聊天室由 join_room 事件驅動)
	router.HandleFunc("/ws", chatHandler.ServeWS)

	authMW := middleware.JWTMiddleware(cfg.JWTSecret)

	// 需要登入的路由
	authed := router.NewRoute().Subrouter()
	authed.Use(authMW)
	authed.HandleFunc("/chat/history", chatHandler.HandleChatHistory).Methods("GET")
	authed.HandleFunc("/chat/presence", chatHandler.HandleRoomPresence).Methods("GET")
	authed.HandleFunc("/applications", handlers.GetApplications).Methods("GET")

	// 限 HR 的路由
	hrOnly := router.NewRoute().Subrouter()
	hrOnly.Use(authMW, middleware.RequireRole(models.RoleHR, models.RoleDepartment, models.RoleAdmin))
	hrOnly.HandleFunc("/jobs", handlers.CreateJob).Methods("POST")
	hrOnly.HandleFunc("/jobs/{id}", handlers.UpdateJob).Methods("PUT")
	hrOnly.HandleFunc("/applications/{id}", handlers.UpdateApplicationStatus).Methods("PUT")
	hrOnly.HandleFunc("/hr/stats", handlers.GetHRStats).Methods("GET")

	// 限求職者的路由
	applicantOnly := router.NewRoute().Subrouter()
	applicantOnly.Use(authMW, middleware.RequireRole(models.RoleApplicant))
	applicantOnly.HandleFunc("/jobs/{id}/apply", handlers.ApplyToJob).Methods("POST")

	// 限管理員的路由
	adminOnly := router.NewRoute().Subrouter()
	adminOnly.Use(authMW, middleware.RequireRole(models.RoleAdmin))
	adminOnly.HandleFunc("/admin/stats", handlers.GetAdminStats).Methods("GET")
	adminOnly.HandleFunc("/admin/users", handlers.GetAllUsers).Methods("GET")
	adminOnly.HandleFunc("/admin/users/{id}", handlers.UpdateUserRole).Methods("PUT")
	adminOnly.HandleFunc("/admin/users/{id}", handlers.DeleteUser).Methods("DELETE")

	// 設置 CORS 中介軟體
	// 實際生產環境中，你應該將 AllowedOrigins 限制為你的前端網域
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// 將 CORS 中介軟體應用到你的路由上
	handler := c.Handler(router)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handler, // 將處理器替換為帶有 CORS 的 handler
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// 如果錯誤不是因為主動關閉伺服器，就記錄錯誤並結束程式
			log.Fatalf("Could not listen on %s: %v", serverAddr, err)
		}
	}()

	//當按下 Ctrl+C，程式會收到 SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %s, shutting down server...", sig)

	//最多等30秒關閉，避免資料損壞，請求中斷
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully.")
}
