package database

import (
	"context"
	"log"
	"time"

	"job-portal/backend/models" // 引入 models 套件

	"go.mongodb.org/mongo-driver/bson" // 引入 bson 套件
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var MongoClient *mongo.Client
var dbName string // 儲存資料庫名稱

// ConnectMongoDB 建立並初始化 MongoDB 連線
func ConnectMongoDB(uri, name string) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Println("Connected to MongoDB successfully!")
	MongoClient = client
	dbName = name

	// 在 users.email 上建立唯一索引，防止重複註冊
	usersCollection := MongoClient.Database(dbName).Collection("users")
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err = usersCollection.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Fatalf("Failed to create unique index on users.email: %v", err)
	}
	log.Println("Unique index created for users.email.")
}

// GetCollection 獲取指定資料庫的集合
func GetCollection(collectionName string) *mongo.Collection {
	if MongoClient == nil {
		log.Fatal("MongoDB client is not initialized. Call ConnectMongoDB first.")
	}
	if dbName == "" { // 額外防護，確保 dbName 已初始化
		log.Fatal("Database name is not set. Call ConnectMongoDB with a valid dbName.")
	}
	return MongoClient.Database(dbName).Collection(collectionName)
}

// ---- 使用者 ----

// FindUserByEmail 透過 Email 尋找使用者，找不到時回傳 mongo.ErrNoDocuments
func FindUserByEmail(email string) (*models.User, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 透過 ID 尋找使用者
func GetUserByID(id primitive.ObjectID) (*models.User, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertUser 將新使用者插入到 MongoDB
func InsertUser(user models.User) (*mongo.InsertOneResult, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := collection.InsertOne(ctx, user)
	if err != nil {
		log.Printf("Error inserting user: %v", err)
		return nil, err
	}
	return result, nil
}

// GetAllUsers 取得所有使用者
func GetAllUsers() ([]models.User, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole 更新使用者角色
func UpdateUserRole(id primitive.ObjectID, role models.UserRole) (*models.User, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser 刪除使用者
func DeleteUser(id primitive.ObjectID) error {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// UpdateUserPassword 更新使用者密碼 (重設密碼流程用)
func UpdateUserPassword(id primitive.ObjectID, hashedPassword string) error {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"password": hashedPassword, "updatedAt": time.Now()}}
	_, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// CountUsers 統計符合條件的使用者數量，filter 為 nil 時統計全部
func CountUsers(filter bson.M) (int64, error) {
	collection := GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	return collection.CountDocuments(ctx, filter)
}

// ---- 職缺 ----

// InsertJob 將新職缺插入到 MongoDB
func InsertJob(job models.Job) (*mongo.InsertOneResult, error) {
	collection := GetCollection("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := collection.InsertOne(ctx, job)
	if err != nil {
		log.Printf("Error inserting job: %v", err)
		return nil, err
	}
	return result, nil
}

// FindJobByID 透過 ID 尋找職缺，找不到時回傳 (nil, nil)
func FindJobByID(id primitive.ObjectID) (*models.Job, error) {
	collection := GetCollection("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var job models.Job
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindJobs 依條件查詢職缺，最新刊登的排在前面
func FindJobs(filter bson.M) ([]models.Job, error) {
	collection := GetCollection("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []models.Job
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob 更新職缺欄位並回傳更新後的結果
func UpdateJob(id primitive.ObjectID, fields bson.M) (*models.Job, error) {
	collection := GetCollection("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fields["updatedAt"] = time.Now()
	update := bson.M{"$set": fields}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var job models.Job
	if err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CountJobs 統計符合條件的職缺數量
func CountJobs(filter bson.M) (int64, error) {
	collection := GetCollection("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	return collection.CountDocuments(ctx, filter)
}

// ---- 應徵 ----

// InsertApplication 將新的應徵紀錄插入到 MongoDB
func InsertApplication(app models.Application) (*mongo.InsertOneResult, error) {
	collection := GetCollection("applications")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := collection.InsertOne(ctx, app)
	if err != nil {
		log.Printf("Error inserting application: %v", err)
		return nil, err
	}
	return result, nil
}

// FindApplication 檢查某位求職者是否已應徵過某職缺，找不到時回傳 (nil, nil)
func FindApplication(jobID, applicantID primitive.ObjectID) (*models.Application, error) {
	collection := GetCollection("applications")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var app models.Application
	err := collection.FindOne(ctx, bson.M{"jobId": jobID, "applicantId": applicantID}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindApplications 依條件查詢應徵紀錄，最新送出的排在前面
func FindApplications(filter bson.M) ([]models.Application, error) {
	collection := GetCollection("applications")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []models.Application
	if err = cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplicationStatus 更新應徵案件的審核狀態
func UpdateApplicationStatus(id primitive.ObjectID, status models.ApplicationStatus) (*models.Application, error) {
	collection := GetCollection("applications")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.Application
	if err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

// CountApplications 統計符合條件的應徵數量
func CountApplications(filter bson.M) (int64, error) {
	collection := GetCollection("applications")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	return collection.CountDocuments(ctx, filter)
}

// DisconnectMongoDB 關閉 MongoDB 連線
func DisconnectMongoDB() {
	if MongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := MongoClient.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	} else {
		log.Println("Disconnected from MongoDB.")
	}
}
