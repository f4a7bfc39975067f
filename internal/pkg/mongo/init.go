package mongo

import (
	"Aviary/internal/api/config"
	"Aviary/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 建立连接并返回 Database 引用，同时初始化索引
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 建立连接
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	// 检查连通性
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)

	if err = ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}

// ensureIndexes 创建唯一索引与 TTL 索引
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// 游客账号到期后由 MongoDB 自动删除
			Keys:    bson.D{{Key: "expire_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("likes").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// 同一用户对同一内容至多一条点赞记录
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "post", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "post", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("contents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "post_data.user.id", Value: 1}, {Key: "post_data.timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "post_data.post_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "parent_post._id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "root_post._id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "quoted_post._id", Value: 1}},
		},
	})
	return err
}
