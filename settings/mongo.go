package settings

import (
	"context"

	"servecart/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const siteDocID = "site"

type MongoRepository struct {
	Site     *mongo.Collection
	Payments *mongo.Collection
}

func (r *MongoRepository) LoadSite(ctx context.Context) (models.SiteSettings, error) {
	var s models.SiteSettings
	err := r.Site.FindOne(ctx, bson.M{"_id": siteDocID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s, ErrNoSettings
	}
	return s, errors.Wrap(err, "find site settings")
}

func (r *MongoRepository) SaveSite(ctx context.Context, s models.SiteSettings) error {
	_, err := r.Site.UpdateOne(ctx, bson.M{"_id": siteDocID}, bson.M{"$set": s}, options.Update().SetUpsert(true))
	return errors.Wrap(err, "save site settings")
}

func (r *MongoRepository) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	cur, err := r.Payments.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find payment methods")
	}
	var out []models.PaymentMethod
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode payment methods")
	}
	return out, nil
}

func (r *MongoRepository) SavePaymentMethod(ctx context.Context, pm models.PaymentMethod) error {
	_, err := r.Payments.ReplaceOne(ctx, bson.M{"_id": pm.ID}, pm, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "save payment method %q", pm.ID)
}
