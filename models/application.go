package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationStatus 定義應徵案件的審核狀態
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationReviewed ApplicationStatus = "REVIEWED"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// ValidApplicationStatus 檢查狀態字串是否屬於封閉集合
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Application 代表求職者對某職缺的一次應徵
type Application struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	JobID       primitive.ObjectID `bson:"jobId" json:"jobId"`
	ApplicantID primitive.ObjectID `bson:"applicantId" json:"applicantId"`
	CoverLetter string             `bson:"coverLetter" json:"coverLetter"`
	ResumeURL   string             `bson:"resumeUrl" json:"resumeUrl"`
	Status      ApplicationStatus  `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
