// internal/app/store/resolve/resolve.go

// Package resolve performs joined fetches with a fallback path for schemas
// that cannot serve the join.
//
// The happy path is a single aggregation with one $lookup per declared
// relation. When the server reports that a join cannot be resolved
// (storeerr.KindRelationshipMissing, a schema-level condition distinct
// from "no rows" and from permission errors), the resolver re-issues the
// fetch as flat queries and performs the merge in memory. Callers cannot
// tell which path ran: the merged output is identical either way.
//
// Every other error kind propagates unchanged. The resolver performs no
// caching across calls; repeated fetches hit the store each time.
package resolve

import (
	"context"
	"fmt"

	"github.com/dalemusser/communityhub/internal/app/store/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Querier is the slice of the store the resolver needs. *mongo.Database is
// adapted via NewMongoQuerier; tests substitute in-memory fakes.
type Querier interface {
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error)
	Find(ctx context.Context, collection string, filter bson.M, sort bson.D) ([]bson.M, error)
}

// Relation declares one join from the base collection to a related one.
type Relation struct {
	Name         string // field the related document is embedded under
	From         string // related collection
	LocalField   string // foreign-key field on the base document
	ForeignField string // key field on the related document, usually _id

	// Placeholder fills the Name slot when the foreign key matches nothing.
	// Dangling references never fail a fetch; they surface as this value.
	Placeholder bson.M
}

// Resolver fetches base documents with embedded relations.
type Resolver struct {
	q   Querier
	log *zap.Logger
}

// New constructs a Resolver over the given Querier.
func New(q Querier, logger *zap.Logger) *Resolver {
	return &Resolver{q: q, log: logger}
}

// FetchWithRelations returns the base documents matching filter, ordered by
// sort, with each declared relation embedded under its Name. Sort keys must
// reference base-document fields.
func (r *Resolver) FetchWithRelations(ctx context.Context, base string, filter bson.M, sort bson.D, rels []Relation) ([]bson.M, error) {
	docs, err := r.q.Aggregate(ctx, base, buildPipeline(filter, sort, rels))
	if err == nil {
		return docs, nil
	}
	if !storeerr.IsRelationshipMissing(err) {
		return nil, err
	}

	r.log.Warn("declarative join unavailable, rebuilding via flat fetches",
		zap.String("collection", base),
		zap.Error(err))

	return r.fetchDecomposed(ctx, base, filter, sort, rels)
}

// buildPipeline expresses the joined fetch declaratively: one $lookup +
// $unwind per relation, with $ifNull substituting the placeholder so the
// output shape matches the decomposed path exactly.
func buildPipeline(filter bson.M, sort bson.D, rels []Relation) mongo.Pipeline {
	pipe := mongo.Pipeline{}
	if len(filter) > 0 {
		pipe = append(pipe, bson.D{{Key: "$match", Value: filter}})
	}

	for _, rel := range rels {
		pipe = append(pipe,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         rel.From,
				"localField":   rel.LocalField,
				"foreignField": rel.ForeignField,
				"as":           rel.Name,
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{
				"path":                       "$" + rel.Name,
				"preserveNullAndEmptyArrays": true,
			}}},
			bson.D{{Key: "$addFields", Value: bson.M{
				rel.Name: bson.M{"$ifNull": bson.A{"$" + rel.Name, rel.Placeholder}},
			}}},
		)
	}

	if len(sort) > 0 {
		pipe = append(pipe, bson.D{{Key: "$sort", Value: sort}})
	}
	return pipe
}

// fetchDecomposed rebuilds the join manually: flat fetch of the base,
// one $in fetch per relation, then a key-indexed merge.
func (r *Resolver) fetchDecomposed(ctx context.Context, base string, filter bson.M, sort bson.D, rels []Relation) ([]bson.M, error) {
	baseDocs, err := r.q.Find(ctx, base, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("flat fetch of %s: %w", base, err)
	}

	for _, rel := range rels {
		keys := distinctKeys(baseDocs, rel.LocalField)

		byKey := map[interface{}]bson.M{}
		if len(keys) > 0 {
			relDocs, err := r.q.Find(ctx, rel.From, bson.M{rel.ForeignField: bson.M{"$in": keys}}, nil)
			if err != nil {
				return nil, fmt.Errorf("flat fetch of relation %s: %w", rel.From, err)
			}
			for _, d := range relDocs {
				if k, ok := d[rel.ForeignField]; ok {
					byKey[k] = d
				}
			}
		}

		for _, doc := range baseDocs {
			if related, ok := byKey[doc[rel.LocalField]]; ok {
				doc[rel.Name] = related
			} else {
				doc[rel.Name] = rel.Placeholder
			}
		}
	}

	return baseDocs, nil
}

// distinctKeys collects the distinct non-nil foreign-key values in order of
// first appearance.
func distinctKeys(docs []bson.M, field string) []interface{} {
	seen := map[interface{}]struct{}{}
	var keys []interface{}
	for _, d := range docs {
		v, ok := d[field]
		if !ok || v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		keys = append(keys, v)
	}
	return keys
}

// MongoQuerier adapts *mongo.Database to the Querier interface.
type MongoQuerier struct {
	db *mongo.Database
}

// NewMongoQuerier wraps db for use with a Resolver.
func NewMongoQuerier(db *mongo.Database) *MongoQuerier {
	return &MongoQuerier{db: db}
}

func (m *MongoQuerier) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	cur, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoQuerier) Find(ctx context.Context, collection string, filter bson.M, sort bson.D) ([]bson.M, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
