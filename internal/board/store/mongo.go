package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openclub/bulletin/internal/board"
)

// mongoDocID is the fixed _id of the one aggregate document.
const mongoDocID = "board"

type mongoEnvelope struct {
	ID             string `bson:"_id"`
	board.Document `bson:",inline"`
}

// MongoStore persists the aggregate as a single document in one collection,
// replaced whole on every write. It exists for deployments that would rather
// not mount a writable data volume; the file store stays the default.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (m *MongoStore) Read(ctx context.Context) (*board.Document, error) {
	var env mongoEnvelope
	err := m.col.FindOne(ctx, bson.M{"_id": mongoDocID}).Decode(&env)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			doc := board.NewDocument()
			if werr := m.Write(ctx, doc); werr != nil {
				return nil, werr
			}
			return doc, nil
		}
		return nil, fmt.Errorf("%w: mongo read: %v", ErrStorageUnavailable, err)
	}
	doc := env.Document
	doc.Normalize()
	return &doc, nil
}

func (m *MongoStore) Write(ctx context.Context, doc *board.Document) error {
	env := mongoEnvelope{ID: mongoDocID, Document: *doc}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": mongoDocID}, env, opts); err != nil {
		return fmt.Errorf("%w: mongo write: %v", ErrStorageUnavailable, err)
	}
	return nil
}
