package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptbattle/internal/model"
)

// RecapRepo archives finished games. Live sessions never read from it; the
// archive only backs the REST recap endpoint.
type RecapRepo interface {
	Create(ctx context.Context, recap *model.GameRecap) error
	ListByCode(ctx context.Context, code string, limit int) ([]model.GameRecap, error)
}

type recapRepo struct {
	collection *mongo.Collection
}

func NewRecapRepo(client *mongo.Client) RecapRepo {
	db := client.Database("promptbattle")
	return &recapRepo{
		collection: db.Collection("recaps"),
	}
}

func (r *recapRepo) Create(ctx context.Context, recap *model.GameRecap) error {
	_, err := r.collection.InsertOne(ctx, recap)
	return err
}

func (r *recapRepo) ListByCode(ctx context.Context, code string, limit int) ([]model.GameRecap, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "finishedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recaps []model.GameRecap
	if err := cursor.All(ctx, &recaps); err != nil {
		return nil, err
	}
	return recaps, nil
}
