package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobStatus 定義職缺的狀態
type JobStatus string

const (
	JobStatusActive JobStatus = "ACTIVE"
	JobStatusClosed JobStatus = "CLOSED"
)

// Job 代表一筆職缺
type Job struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Department   string             `bson:"department" json:"department"`
	Location     string             `bson:"location" json:"location"`
	Type         string             `bson:"type" json:"type"` // 例如 FULL_TIME / PART_TIME / CONTRACT
	Salary       string             `bson:"salary" json:"salary"`
	Description  string             `bson:"description" json:"description"`
	Requirements []string           `bson:"requirements" json:"requirements"`
	Status       JobStatus          `bson:"status" json:"status"`
	PostedBy     primitive.ObjectID `bson:"postedBy" json:"postedBy"` // 刊登職缺的 HR
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
