package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"job-portal/backend/database"
	"job-portal/backend/models"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminStatsResponse 是管理員儀表板的統計數字
type AdminStatsResponse struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalJobs         int64 `json:"totalJobs"`
	TotalApplications int64 `json:"totalApplications"`
	ActiveJobs        int64 `json:"activeJobs"`
}

// GetAdminStats 處理管理員儀表板統計的請求
func GetAdminStats(w http.ResponseWriter, r *http.Request) {
	totalUsers, err := database.CountUsers(nil)
	if err != nil {
		log.Printf("Error counting users: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	totalJobs, err := database.CountJobs(nil)
	if err != nil {
		log.Printf("Error counting jobs: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	totalApplications, err := database.CountApplications(nil)
	if err != nil {
		log.Printf("Error counting applications: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	activeJobs, err := database.CountJobs(bson.M{"status": models.JobStatusActive})
	if err != nil {
		log.Printf("Error counting active jobs: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AdminStatsResponse{
		TotalUsers:        totalUsers,
		TotalJobs:         totalJobs,
		TotalApplications: totalApplications,
		ActiveJobs:        activeJobs,
	})
}

// HRStatsResponse 是 HR 儀表板的統計數字
type HRStatsResponse struct {
	TotalApplicants     int64 `json:"totalApplicants"`
	ActiveJobs          int64 `json:"activeJobs"`
	PendingApplications int64 `json:"pendingApplications"`
}

// GetHRStats 處理 HR 儀表板統計的請求
func GetHRStats(w http.ResponseWriter, r *http.Request) {
	totalApplicants, err := database.CountUsers(bson.M{"role": models.RoleApplicant})
	if err != nil {
		log.Printf("Error counting applicants: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	activeJobs, err := database.CountJobs(bson.M{"status": models.JobStatusActive})
	if err != nil {
		log.Printf("Error counting active jobs: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	pendingApplications, err := database.CountApplications(bson.M{"status": models.ApplicationPending})
	if err != nil {
		log.Printf("Error counting pending applications: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HRStatsResponse{
		TotalApplicants:     totalApplicants,
		ActiveJobs:          activeJobs,
		PendingApplications: pendingApplications,
	})
}

// GetAllUsers 處理獲取所有使用者列表的請求 (限管理員)
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := database.GetAllUsers()
	if err != nil {
		log.Printf("Error finding all users: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(users); err != nil {
		log.Printf("Error encoding users: %v", err)
	}
}

// UpdateUserRole 處理管理員調整使用者角色的請求
func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	var req struct {
		Role models.UserRole `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	switch req.Role {
	case models.RoleApplicant, models.RoleHR, models.RoleDepartment, models.RoleAdmin:
	default:
		sendJSONError(w, "Invalid role", http.StatusBadRequest)
		return
	}

	user, err := database.UpdateUserRole(userID, req.Role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating role for user %s: %v", userID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// DeleteUser 處理管理員刪除使用者的請求
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	if err := database.DeleteUser(userID); err != nil {
		log.Printf("Error deleting user %s: %v", userID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
