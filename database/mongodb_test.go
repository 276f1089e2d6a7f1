package database

import (
	"context"
	"testing"
	"time"

	"job-portal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// 以 testcontainers 啟動臨時 MongoDB 做整合測試，-short 模式下跳過
func setupMongo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping MongoDB integration test in short mode")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:6")
	require.NoError(t, err, "啟動 MongoDB 容器不應該失敗")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	ConnectMongoDB(uri, "job_portal_test")
	t.Cleanup(DisconnectMongoDB)
}

func TestUserCRUD(t *testing.T) {
	setupMongo(t)

	user := models.User{
		Name:      "Test User",
		Email:     "user@example.com",
		Password:  "hashed",
		Role:      models.RoleApplicant,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := InsertUser(user)
	require.NoError(t, err)
	userID := result.InsertedID.(primitive.ObjectID)

	// Email 唯一索引：重複插入必須失敗
	_, err = InsertUser(user)
	assert.Error(t, err, "相同 Email 的第二次插入應該被唯一索引擋下")

	found, err := FindUserByEmail("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, found.ID)
	assert.Equal(t, models.RoleApplicant, found.Role)

	_, err = FindUserByEmail("nobody@example.com")
	assert.Equal(t, mongo.ErrNoDocuments, err)

	updated, err := UpdateUserRole(userID, models.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, models.RoleHR, updated.Role)

	count, err := CountUsers(bson.M{"role": models.RoleHR})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, DeleteUser(userID))
	_, err = GetUserByID(userID)
	assert.Equal(t, mongo.ErrNoDocuments, err)
}

func TestJobAndApplicationFlow(t *testing.T) {
	setupMongo(t)

	hrID := primitive.NewObjectID()
	job := models.Job{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Location:    "Main Campus",
		Type:        "FULL_TIME",
		Description: "Teach undergraduate courses.",
		Status:      models.JobStatusActive,
		PostedBy:    hrID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := InsertJob(job)
	require.NoError(t, err)
	jobID := result.InsertedID.(primitive.ObjectID)

	found, err := FindJobByID(jobID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Lecturer", found.Title)

	missing, err := FindJobByID(primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, missing, "不存在的職缺應該回傳 nil 而非錯誤")

	jobs, err := FindJobs(bson.M{"department": "Computer Science"})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	// 應徵流程
	applicantID := primitive.NewObjectID()
	app := models.Application{
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: "I would like to apply.",
		Status:      models.ApplicationPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	appResult, err := InsertApplication(app)
	require.NoError(t, err)
	appID := appResult.InsertedID.(primitive.ObjectID)

	existing, err := FindApplication(jobID, applicantID)
	require.NoError(t, err)
	require.NotNil(t, existing, "剛插入的應徵紀錄應該查得到")

	none, err := FindApplication(jobID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, none)

	updatedApp, err := UpdateApplicationStatus(appID, models.ApplicationReviewed)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationReviewed, updatedApp.Status)

	pending, err := CountApplications(bson.M{"status": models.ApplicationPending})
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)

	// 關閉職缺
	closedJob, err := UpdateJob(jobID, bson.M{"status": models.JobStatusClosed})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, closedJob.Status)

	active, err := CountJobs(bson.M{"status": models.JobStatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(0), active)
}
