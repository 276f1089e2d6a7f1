package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"job-portal/backend/database"
	"job-portal/backend/models"
	"job-portal/backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// JobRequest 定義刊登職缺的請求體
type JobRequest struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Salary       string   `json:"salary"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

// UpdateJobRequest 定義更新職缺的請求體，nil 欄位表示不更動
type UpdateJobRequest struct {
	Title       *string           `json:"title"`
	Location    *string           `json:"location"`
	Salary      *string           `json:"salary"`
	Description *string           `json:"description"`
	Status      *models.JobStatus `json:"status"`
}

// ApplyRequest 定義應徵職缺的請求體
type ApplyRequest struct {
	CoverLetter string `json:"coverLetter"`
	ResumeURL   string `json:"resumeUrl"`
}

// CreateJob 處理刊登職缺的請求 (限 HR)
func CreateJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Description == "" {
		sendJSONError(w, "Title and description are required", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	job := models.Job{
		Title:        req.Title,
		Department:   req.Department,
		Location:     req.Location,
		Type:         req.Type,
		Salary:       req.Salary,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       models.JobStatusActive,
		PostedBy:     userID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	result, err := database.InsertJob(job)
	if err != nil {
		log.Printf("Error inserting job: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	job.ID = result.InsertedID.(primitive.ObjectID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// GetJobs 處理查詢職缺列表的請求，支援 status / department / type 過濾
func GetJobs(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if department := r.URL.Query().Get("department"); department != "" {
		filter["department"] = department
	}
	if jobType := r.URL.Query().Get("type"); jobType != "" {
		filter["type"] = jobType
	}

	jobs, err := database.FindJobs(filter)
	if err != nil {
		log.Printf("Error finding jobs: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GetJob 處理查詢單一職缺的請求
func GetJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid job ID format", http.StatusBadRequest)
		return
	}

	job, err := database.FindJobByID(jobID)
	if err != nil {
		log.Printf("Error finding job %s: %v", jobID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		sendJSONError(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// UpdateJob 處理更新職缺的請求 (限刊登者本人或管理員)
func UpdateJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid job ID format", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := database.FindJobByID(jobID)
	if err != nil {
		log.Printf("Error finding job %s: %v", jobID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		sendJSONError(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.PostedBy != userID && role != models.RoleAdmin {
		sendJSONError(w, "You can only update jobs you posted", http.StatusForbidden)
		return
	}

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Salary != nil {
		fields["salary"] = *req.Salary
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if *req.Status != models.JobStatusActive && *req.Status != models.JobStatusClosed {
			sendJSONError(w, "Status must be ACTIVE or CLOSED", http.StatusBadRequest)
			return
		}
		fields["status"] = *req.Status
	}
	if len(fields) == 0 {
		sendJSONError(w, "No fields to update", http.StatusBadRequest)
		return
	}

	updatedJob, err := database.UpdateJob(jobID, fields)
	if err != nil {
		log.Printf("Error updating job %s: %v", jobID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedJob)
}

// ApplyToJob 處理應徵職缺的請求 (限求職者)，重複應徵回 409
func ApplyToJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid job ID format", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	job, err := database.FindJobByID(jobID)
	if err != nil {
		log.Printf("Error finding job %s: %v", jobID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		sendJSONError(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.Status != models.JobStatusActive {
		sendJSONError(w, "This job is no longer accepting applications", http.StatusBadRequest)
		return
	}

	// 同一人對同一職缺只能應徵一次
	existing, err := database.FindApplication(jobID, userID)
	if err != nil {
		log.Printf("Error checking existing application: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		sendJSONError(w, "You have already applied to this job", http.StatusConflict)
		return
	}

	app := models.Application{
		JobID:       jobID,
		ApplicantID: userID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
		Status:      models.ApplicationPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := database.InsertApplication(app)
	if err != nil {
		log.Printf("Error inserting application: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	app.ID = result.InsertedID.(primitive.ObjectID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

// GetApplications 處理查詢應徵紀錄的請求：
// 求職者看到自己的應徵，HR 看到自己刊登職缺收到的應徵，管理員看到全部
func GetApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var filter bson.M
	switch role {
	case models.RoleApplicant:
		filter = bson.M{"applicantId": userID}
	case models.RoleAdmin:
		filter = bson.M{}
	default: // HR / 系所只看自己刊登職缺收到的應徵
		jobs, err := database.FindJobs(bson.M{"postedBy": userID})
		if err != nil {
			log.Printf("Error finding jobs for user %s: %v", userID.Hex(), err)
			sendJSONError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		jobIDs := make([]primitive.ObjectID, 0, len(jobs))
		for _, job := range jobs {
			jobIDs = append(jobIDs, job.ID)
		}
		filter = bson.M{"jobId": bson.M{"$in": jobIDs}}
	}

	apps, err := database.FindApplications(filter)
	if err != nil {
		log.Printf("Error finding applications: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apps)
}

// UpdateApplicationStatus 處理 HR 更新應徵狀態的請求
func UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		sendJSONError(w, "Invalid application ID format", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil {
		sendJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status models.ApplicationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidApplicationStatus(req.Status) {
		sendJSONError(w, "Invalid application status", http.StatusBadRequest)
		return
	}

	apps, err := database.FindApplications(bson.M{"_id": appID})
	if err != nil || len(apps) == 0 {
		sendJSONError(w, "Application not found", http.StatusNotFound)
		return
	}

	// 只有該職缺的刊登者 (或管理員) 能審核
	if role != models.RoleAdmin {
		job, err := database.FindJobByID(apps[0].JobID)
		if err != nil || job == nil {
			sendJSONError(w, "Job not found for application", http.StatusNotFound)
			return
		}
		if job.PostedBy != userID {
			sendJSONError(w, "You can only review applications for jobs you posted", http.StatusForbidden)
			return
		}
	}

	updated, err := database.UpdateApplicationStatus(appID, req.Status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			sendJSONError(w, "Application not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating application %s: %v", appID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
