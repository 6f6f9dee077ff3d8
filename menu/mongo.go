package menu

import (
	"context"
	"time"

	"servecart/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores menu items keyed by their id.
type MongoRepository struct {
	Collection *mongo.Collection
}

func NewMongoRepository(c *mongo.Collection) *MongoRepository {
	return &MongoRepository{Collection: c}
}

func (r *MongoRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find menu items")
	}
	items := []models.MenuItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decode menu items")
	}
	return items, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, errors.Wrapf(models.ErrItemNotFound, "%q", id)
	}
	if err != nil {
		return item, errors.Wrapf(err, "find menu item %q", id)
	}
	return item, nil
}

func (r *MongoRepository) Create(ctx context.Context, item models.MenuItem) error {
	_, err := r.Collection.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(ErrDuplicateItem, "%q", item.ID)
	}
	return errors.Wrapf(err, "insert menu item %q", item.ID)
}

func (r *MongoRepository) Update(ctx context.Context, item models.MenuItem) error {
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return errors.Wrapf(err, "replace menu item %q", item.ID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(models.ErrItemNotFound, "%q", item.ID)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete menu item %q", id)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(models.ErrItemNotFound, "%q", id)
	}
	return nil
}

func (r *MongoRepository) SetImage(ctx context.Context, id, image, thumbnail string) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image":     image,
		"thumbnail": thumbnail,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return errors.Wrapf(err, "set image of %q", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(models.ErrItemNotFound, "%q", id)
	}
	return nil
}

// SeedIfEmpty inserts items when the collection holds no documents and
// reports how many were written.
func (r *MongoRepository) SeedIfEmpty(ctx context.Context, items []models.MenuItem) (int, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count menu items")
	}
	if n > 0 || len(items) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(items))
	now := time.Now()
	for i, it := range items {
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
			it.UpdatedAt = it.CreatedAt
		}
		docs = append(docs, it)
	}
	if _, err := r.Collection.InsertMany(ctx, docs); err != nil {
		return 0, errors.Wrap(err, "seed menu items")
	}
	return len(docs), nil
}
