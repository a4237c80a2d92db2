package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

func Connect(mongoURI string) error {
	// Longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseName(mongoURI))

	log.Println("✅ Connected to MongoDB")
	return nil
}

// databaseName extracts the database from the connection string
// (mongodb://.../<name>?...), falling back to "staynest".
func databaseName(mongoURI string) string {
	name := "staynest"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			name = dbPart
		}
	}
	return name
}

// EnsureIndexes creates the unique indexes the credential store relies on:
// email is the identity key across providers, phone is unique when present.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	users := DB.Collection("users")
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("idx_phone_unique").SetUnique(true).SetSparse(true),
		},
	}
	for _, m := range models {
		if _, err := users.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}

	homes := DB.Collection("homes")
	_, err := homes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hostid", Value: 1}},
		Options: options.Index().SetName("idx_hostid"),
	})
	return err
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
