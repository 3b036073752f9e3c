package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Default MongoDB location of workflow definitions.
const (
	DefaultMongoDatabase   = "flowgraph"
	DefaultMongoCollection = "workflows"
)

// MongoSource reads definitions from a MongoDB collection. Documents use
// the camelCase field names of [workflow.Workflow]'s bson tags and are
// matched on workflowType.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// MongoOptions configures NewMongoSource.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoSource connects to MongoDB and verifies the connection with a
// ping. Close releases the client.
func NewMongoSource(ctx context.Context, opts MongoOptions) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoSourceFromClient(client, opts.Database, opts.Collection)
	s.owned = true
	return s, nil
}

// NewMongoSourceFromClient uses an existing client. The caller keeps
// ownership of client.
func NewMongoSourceFromClient(client *mongo.Client, database, collection string) *MongoSource {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoSource{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoSource) Name() string {
	return "mongo:" + s.coll.Database().Name() + "." + s.coll.Name()
}

func (s *MongoSource) Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error) {
	var wf workflow.Workflow
	err := s.coll.FindOne(ctx, bson.M{"workflowType": workflowType}).Decode(&wf)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		err = s.coll.FindOne(ctx, bson.M{"name": workflowType}).Decode(&wf)
	}
	switch {
	case err == nil:
		return wf, nil
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return workflow.Workflow{}, notFound(workflowType, s.Name())
	default:
		return workflow.Workflow{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "find workflow %q", workflowType)
	}
}

// Close disconnects the client if NewMongoSource created it.
func (s *MongoSource) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}
