package schema

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/pkg/logger"
)

// MongoRepo implements Repository against a MongoDB collection. Every write
// is a single conditional document update, so the repository honors the
// atomicity contract without transactions.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	_, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warnf("failed to create schema index: %v", err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Upsert(ctx context.Context, s *Schema) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"name": s.Name}, s, opts); err != nil {
		return fmt.Errorf("upsert schema %q: %v: %w", s.Name, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MongoRepo) Ensure(ctx context.Context, name, schemaType string) error {
	update := bson.M{
		"$setOnInsert": bson.M{"name": name, "versions": []Version{}},
		"$set":         bson.M{"schema_type": schemaType},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, bson.M{"name": name}, update, opts); err != nil {
		return fmt.Errorf("ensure schema %q: %v: %w", name, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MongoRepo) FindByName(ctx context.Context, name string) (*Schema, error) {
	var s Schema
	err := m.col.FindOne(ctx, bson.M{"name": name}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find schema %q: %v: %w", name, err, apperr.ErrStorage)
	}
	return &s, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*Schema, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %v: %w", err, apperr.ErrStorage)
	}
	defer cur.Close(ctx)
	out := []*Schema{}
	for cur.Next(ctx) {
		var s Schema
		if err := cur.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode schema: %v: %w", err, apperr.ErrStorage)
		}
		out = append(out, &s)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list schemas: %v: %w", err, apperr.ErrStorage)
	}
	return out, nil
}

func (m *MongoRepo) AppendVersion(ctx context.Context, name string, v Version) error {
	// the $ne guard and the $push run in one document update: two racing
	// appends of the same version string store exactly one entry
	res, err := m.col.UpdateOne(ctx,
		bson.M{"name": name, "versions.version": bson.M{"$ne": v.Version}},
		bson.M{"$push": bson.M{"versions": v}},
	)
	if err != nil {
		return fmt.Errorf("append version %s to schema %q: %v: %w", v.Version, name, err, apperr.ErrStorage)
	}
	if res.MatchedCount == 0 {
		// no match means the schema is absent or the version already exists
		s, err := m.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("schema %q: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("schema %q already has version %s: %w", name, v.Version, apperr.ErrValidation)
	}
	return nil
}

func (m *MongoRepo) ReplaceVersion(ctx context.Context, name string, v Version) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"name": name, "versions.version": v.Version},
		bson.M{"$set": bson.M{"versions.$": v}},
	)
	if err != nil {
		return fmt.Errorf("replace version %s of schema %q: %v: %w", v.Version, name, err, apperr.ErrStorage)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("schema %q version %s: %w", name, v.Version, apperr.ErrNotFound)
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, name string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("delete schema %q: %v: %w", name, err, apperr.ErrStorage)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("schema %q: %w", name, apperr.ErrNotFound)
	}
	return nil
}
