package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"video_compositor/compositor/engine"
)

// TimelineSnapshot is the persisted form of a job's timeline: the structural
// JSON snapshot plus the command it compiled to, kept for reruns and
// debugging.
type TimelineSnapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	JobID     string             `bson:"job_id"`
	CreatedAt time.Time          `bson:"created_at"`
	Snapshot  string             `bson:"snapshot"`
	Command   string             `bson:"command,omitempty"`
}

// SnapshotStore persists timeline snapshots in MongoDB. A nil store disables
// persistence.
type SnapshotStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewSnapshotStore connects to MongoDB at uri.
func NewSnapshotStore(uri string) (*SnapshotStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	return &SnapshotStore{
		client:     client,
		collection: client.Database("video_compositor").Collection("timelines"),
	}, nil
}

// Save stores a job's timeline snapshot and emitted command.
func (s *SnapshotStore) Save(jobID string, t engine.Timeline, command string) error {
	if s == nil {
		return nil
	}

	data, err := t.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot timeline: %v", err)
	}

	_, err = s.collection.InsertOne(context.Background(), TimelineSnapshot{
		JobID:     jobID,
		CreatedAt: time.Now(),
		Snapshot:  string(data),
		Command:   command,
	})
	return err
}

// Load reconstructs a job's timeline from its stored snapshot.
func (s *SnapshotStore) Load(jobID string) (engine.Timeline, error) {
	if s == nil {
		return engine.Timeline{}, fmt.Errorf("snapshot store not configured")
	}

	var snap TimelineSnapshot
	err := s.collection.FindOne(context.Background(), bson.M{"job_id": jobID}).Decode(&snap)
	if err != nil {
		return engine.Timeline{}, err
	}
	return engine.TimelineFromSnapshot([]byte(snap.Snapshot))
}

// Close disconnects from MongoDB.
func (s *SnapshotStore) Close() {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.client.Disconnect(ctx)
}
