package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/pkg/logger"
)

// MongoRepo implements DocumentRepository against a MongoDB collection.
// Single-document operations are atomic in Mongo, which gives the per-slug
// serialization (ReplaceOne) and lost-update-free backlink sets
// ($addToSet/$pull) the ingestion contract requires.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// slug is the primary key; links_out is queried by FindReferencing
	_, err := col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "links_out", Value: 1}}},
	})
	if err != nil {
		logger.Warnf("failed to create document indexes: %v", err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Upsert(ctx context.Context, doc *document.Document) error {
	// $set everything except backlinks: that set is owned by the atomic
	// AddBacklink/RemoveBacklink mutations and must survive this write
	update := bson.M{
		"$set": bson.M{
			"slug":          doc.Slug,
			"title":         doc.Title,
			"content_key":   doc.ContentKey,
			"access_level":  doc.AccessLevel,
			"service_owner": doc.ServiceOwner,
			"tags":          doc.Tags,
			"links_out":     doc.LinksOut,
			"parent_slug":   doc.ParentSlug,
			"order":         doc.Order,
			"is_hidden":     doc.Hidden,
			"last_updated":  doc.LastUpdated,
		},
		"$setOnInsert": bson.M{"backlinks": []string{}},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, bson.M{"slug": doc.Slug}, update, opts); err != nil {
		return fmt.Errorf("upsert document %q: %v: %w", doc.Slug, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MongoRepo) FindBySlug(ctx context.Context, slug string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find document %q: %v: %w", slug, err, apperr.ErrStorage)
	}
	return &d, nil
}

func (m *MongoRepo) ListAccessible(ctx context.Context, maxLevel access.Level) ([]*document.Document, error) {
	allowed := make([]string, 0, 4)
	for _, l := range access.Levels() {
		if l.AtMost(maxLevel) {
			allowed = append(allowed, l.String())
		}
	}
	filter := bson.M{
		"access_level": bson.M{"$in": allowed},
		"$or": bson.A{
			bson.M{"is_hidden": bson.M{"$exists": false}},
			bson.M{"is_hidden": false},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "slug", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %v: %w", err, apperr.ErrStorage)
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode document: %v: %w", err, apperr.ErrStorage)
		}
		out = append(out, &d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %v: %w", err, apperr.ErrStorage)
	}
	return out, nil
}

func (m *MongoRepo) AddBacklink(ctx context.Context, target, source string) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"slug": target},
		bson.M{"$addToSet": bson.M{"backlinks": source}},
	)
	if err != nil {
		return fmt.Errorf("add backlink %s -> %s: %v: %w", source, target, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MongoRepo) RemoveBacklink(ctx context.Context, target, source string) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"slug": target},
		bson.M{"$pull": bson.M{"backlinks": source}},
	)
	if err != nil {
		return fmt.Errorf("remove backlink %s -> %s: %v: %w", source, target, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MongoRepo) FindReferencing(ctx context.Context, slug string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"slug": 1})
	cur, err := m.col.Find(ctx, bson.M{"links_out": slug}, opts)
	if err != nil {
		return nil, fmt.Errorf("find referencing %q: %v: %w", slug, err, apperr.ErrStorage)
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var row struct {
			Slug string `bson:"slug"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode slug: %v: %w", err, apperr.ErrStorage)
		}
		out = append(out, row.Slug)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find referencing %q: %v: %w", slug, err, apperr.ErrStorage)
	}
	return out, nil
}

func (m *MongoRepo) Delete(ctx context.Context, slug string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("delete document %q: %v: %w", slug, err, apperr.ErrStorage)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("document %q: %w", slug, apperr.ErrNotFound)
	}
	return nil
}
