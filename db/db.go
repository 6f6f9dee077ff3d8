package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	MenuCollection           *mongo.Collection
	SettingsCollection       *mongo.Collection
	PaymentMethodsCollection *mongo.Collection
	Client                   *mongo.Client
)

// Connect opens the MongoDB client, registers the decimal codec and sets the
// package collections.
func Connect(ctx context.Context, uri, dbName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(Registry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return errors.Wrap(err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "ping MongoDB")
	}

	Client = client
	database := client.Database(dbName)
	MenuCollection = database.Collection("menu")
	SettingsCollection = database.Collection("settings")
	PaymentMethodsCollection = database.Collection("payment_methods")

	if _, err := MenuCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}},
	}); err != nil {
		log.Warn().Err(err).Msg("menu index not created")
	}

	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return nil
}

func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect failed")
	}
}
