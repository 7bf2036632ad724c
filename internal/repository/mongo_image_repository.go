package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"imagevault/internal/db"
	"imagevault/internal/model"
)

type mongoImageRepository struct {
	coll collection
}

// NewMongoImageRepository builds a MongoDB-backed repository.
func NewMongoImageRepository(database *mongo.Database) ImageRepository {
	return &mongoImageRepository{coll: database.Collection(db.ImagesCollection)}
}

func (r *mongoImageRepository) Create(ctx context.Context, image *model.Image) error {
	_, err := r.coll.InsertOne(ctx, image)
	return err
}

func (r *mongoImageRepository) ListByOwner(ctx context.Context, ownerID string, isPrivate *bool) ([]model.Image, error) {
	filter := bson.D{{Key: "user_id", Value: ownerID}}
	if isPrivate != nil {
		filter = append(filter, bson.E{Key: "is_private", Value: *isPrivate})
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(ListLimit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var images []model.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *mongoImageRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{
		{Key: "id", Value: id},
		{Key: "user_id", Value: ownerID},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
