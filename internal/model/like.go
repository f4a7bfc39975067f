package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like 点赞记录，(user, post) 唯一。Post 指向原始内容 ID，
// 对转发点赞会归并到被转发的原帖上
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
}
