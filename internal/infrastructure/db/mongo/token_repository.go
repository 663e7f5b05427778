package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/udla/user-directory/internal/core/domain"
)

const tokensCollection = "auth_tokens"

// TokenRepository implements ports.TokenRepository on MongoDB.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(tokensCollection)}
}

type mongoToken struct {
	Token     string `bson:"token"`
	UserID    string `bson:"user_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetOrCreate upserts with $setOnInsert so an existing token is never
// replaced. Two concurrent upserts can collide on the unique index; the
// loser reads the winner's token.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID, candidate string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	update := bson.M{"$setOnInsert": mongoToken{
		Token:     candidate,
		UserID:    userID,
		CreatedAt: time.Now().UTC().Unix(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoToken
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return "", fmt.Errorf("upsert token: %w", err)
	}
	return doc.Token, nil
}

func (r *TokenRepository) FindUserID(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoToken
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("find token: %w", err)
	}
	return doc.UserID, nil
}
