package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thereayou/codecollab/internal/models"
)

const (
	mongoConnectTimeout = 10 * time.Second
	mongoPingTimeout    = 5 * time.Second
	roomsCollection     = "rooms"
)

// MongoStore keeps each room as one document of the rooms collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo connects, pings and ensures the unique roomId index.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is not set")
	}

	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(mongoConnectTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := NewMongoStore(client, client.Database(database))
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: db.Collection(roomsCollection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create rooms index: %w", err)
	}
	return nil
}

func (s *MongoStore) FindRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.collection.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *MongoStore) CreateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now()
	room.CreatedAt, room.UpdatedAt = now, now

	if _, err := s.collection.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrRoomExists
		}
		return err
	}
	return nil
}

func (s *MongoStore) SaveRoom(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now()

	set := bson.M{
		"users":     room.Users,
		"messages":  room.Messages,
		"updatedAt": room.UpdatedAt,
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"roomId": room.RoomID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *MongoStore) UpdateRoom(ctx context.Context, roomID string, fields RoomFields) error {
	if fields.empty() {
		return nil
	}

	set := bson.M{"updatedAt": time.Now()}
	if fields.Code != nil {
		set["code"] = *fields.Code
	}
	if fields.Language != nil {
		set["language"] = *fields.Language
	}
	if fields.Theme != nil {
		set["theme"] = *fields.Theme
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"roomId": roomID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
