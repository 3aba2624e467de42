package resolve

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/dalemusser/communityhub/internal/app/store/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeQuerier serves canned collections. Its Aggregate interprets the same
// pipeline shape the resolver builds ($match, $lookup, $unwind, $addFields,
// $sort), so the declarative path is exercised independently of the manual
// merge it must be equivalent to.
type fakeQuerier struct {
	tables     map[string][]bson.M
	relMissing bool  // force the RelationshipMissing condition
	aggErr     error // arbitrary aggregate failure
	findErr    map[string]error

	findCalls []findCall
}

type findCall struct {
	collection string
	filter     bson.M
}

func (f *fakeQuerier) Aggregate(_ context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	if f.relMissing {
		return nil, storeerr.New(storeerr.KindRelationshipMissing, errors.New("cannot resolve foreign namespace"))
	}

	docs := cloneAll(f.tables[collection])
	for _, stage := range pipeline {
		docs = f.applyStage(docs, stage)
	}
	return docs, nil
}

func (f *fakeQuerier) Find(_ context.Context, collection string, filter bson.M, sortSpec bson.D) ([]bson.M, error) {
	f.findCalls = append(f.findCalls, findCall{collection: collection, filter: filter})
	if err := f.findErr[collection]; err != nil {
		return nil, err
	}

	var out []bson.M
	for _, d := range f.tables[collection] {
		if matches(d, filter) {
			out = append(out, clone(d))
		}
	}
	sortDocs(out, sortSpec)
	return out, nil
}

func (f *fakeQuerier) applyStage(docs []bson.M, stage bson.D) []bson.M {
	op := stage[0].Key
	switch op {
	case "$match":
		var out []bson.M
		for _, d := range docs {
			if matches(d, stage[0].Value.(bson.M)) {
				out = append(out, d)
			}
		}
		return out

	case "$lookup":
		spec := stage[0].Value.(bson.M)
		from, local := spec["from"].(string), spec["localField"].(string)
		foreign, as := spec["foreignField"].(string), spec["as"].(string)
		for _, d := range docs {
			joined := bson.A{}
			for _, fd := range f.tables[from] {
				if d[local] != nil && fd[foreign] == d[local] {
					joined = append(joined, clone(fd))
				}
			}
			d[as] = joined
		}
		return docs

	case "$unwind":
		spec := stage[0].Value.(bson.M)
		field := spec["path"].(string)[1:]
		var out []bson.M
		for _, d := range docs {
			arr, _ := d[field].(bson.A)
			if len(arr) == 0 {
				delete(d, field)
				out = append(out, d)
				continue
			}
			for _, elem := range arr {
				dd := clone(d)
				dd[field] = elem
				out = append(out, dd)
			}
		}
		return out

	case "$addFields":
		for field, expr := range stage[0].Value.(bson.M) {
			ifNull := expr.(bson.M)["$ifNull"].(bson.A)
			for _, d := range docs {
				if _, ok := d[field]; !ok {
					d[field] = ifNull[1]
				}
			}
		}
		return docs

	case "$sort":
		sortDocs(docs, stage[0].Value.(bson.D))
		return docs
	}
	panic("unhandled stage " + op)
}

func matches(d, filter bson.M) bool {
	for k, want := range filter {
		if m, ok := want.(bson.M); ok {
			in, ok := m["$in"].([]interface{})
			if !ok {
				return false
			}
			hit := false
			for _, v := range in {
				if d[k] == v {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
			continue
		}
		if d[k] != want {
			return false
		}
	}
	return true
}

func sortDocs(docs []bson.M, spec bson.D) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range spec {
			a, b := fmt.Sprint(docs[i][s.Key]), fmt.Sprint(docs[j][s.Key])
			if a == b {
				continue
			}
			if s.Value.(int) < 0 {
				return a > b
			}
			return a < b
		}
		return false
	})
}

func clone(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func cloneAll(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		out = append(out, clone(d))
	}
	return out
}

// fixtures: three registrations; one references a missing event.
func seedTables() (map[string][]bson.M, primitive.ObjectID, primitive.ObjectID) {
	eventA := primitive.NewObjectID()
	eventGone := primitive.NewObjectID()
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	return map[string][]bson.M{
		"registrations": {
			{"_id": primitive.NewObjectID(), "seq": 1, "event_id": eventA, "user_id": userA, "status": "pending"},
			{"_id": primitive.NewObjectID(), "seq": 2, "event_id": eventA, "user_id": userB, "status": "approved"},
			{"_id": primitive.NewObjectID(), "seq": 3, "event_id": eventGone, "user_id": userA, "status": "pending"},
		},
		"events": {
			{"_id": eventA, "title": "Beach Cleanup", "active": true},
		},
		"users": {
			{"_id": userA, "full_name": "Ana"},
			{"_id": userB, "full_name": "Budi"},
		},
	}, eventA, eventGone
}

func testRelations() []Relation {
	return []Relation{
		{
			Name: "event", From: "events", LocalField: "event_id", ForeignField: "_id",
			Placeholder: bson.M{"title": "Unknown event"},
		},
		{
			Name: "user", From: "users", LocalField: "user_id", ForeignField: "_id",
			Placeholder: bson.M{"full_name": "Unknown"},
		},
	}
}

// The merged output must be indistinguishable regardless of which path ran.
func TestFetchWithRelations_Equivalence(t *testing.T) {
	tables, _, _ := seedTables()
	sortSpec := bson.D{{Key: "seq", Value: 1}}

	declarative := New(&fakeQuerier{tables: tables}, zap.NewNop())
	viaAggregate, err := declarative.FetchWithRelations(context.Background(), "registrations", bson.M{}, sortSpec, testRelations())
	if err != nil {
		t.Fatalf("declarative path failed: %v", err)
	}

	fallback := New(&fakeQuerier{tables: tables, relMissing: true}, zap.NewNop())
	viaMerge, err := fallback.FetchWithRelations(context.Background(), "registrations", bson.M{}, sortSpec, testRelations())
	if err != nil {
		t.Fatalf("fallback path failed: %v", err)
	}

	if len(viaAggregate) != 3 {
		t.Fatalf("declarative returned %d docs, want 3", len(viaAggregate))
	}
	if !reflect.DeepEqual(viaAggregate, viaMerge) {
		t.Errorf("paths diverge:\n aggregate: %v\n merge:     %v", viaAggregate, viaMerge)
	}
}

func TestFetchWithRelations_FilterAppliesOnBothPaths(t *testing.T) {
	tables, _, _ := seedTables()
	filter := bson.M{"status": "pending"}
	sortSpec := bson.D{{Key: "seq", Value: 1}}

	for _, forced := range []bool{false, true} {
		q := &fakeQuerier{tables: tables, relMissing: forced}
		got, err := New(q, zap.NewNop()).FetchWithRelations(context.Background(), "registrations", filter, sortSpec, testRelations())
		if err != nil {
			t.Fatalf("forced=%v: %v", forced, err)
		}
		if len(got) != 2 {
			t.Errorf("forced=%v: %d docs, want 2", forced, len(got))
		}
		for _, d := range got {
			if d["status"] != "pending" {
				t.Errorf("forced=%v: filter leaked doc %v", forced, d)
			}
		}
	}
}

// A dangling foreign key yields the placeholder, never an error.
func TestFetchWithRelations_DanglingReference(t *testing.T) {
	tables, _, eventGone := seedTables()

	for _, forced := range []bool{false, true} {
		q := &fakeQuerier{tables: tables, relMissing: forced}
		got, err := New(q, zap.NewNop()).FetchWithRelations(context.Background(), "registrations", bson.M{"event_id": eventGone}, nil, testRelations())
		if err != nil {
			t.Fatalf("forced=%v: %v", forced, err)
		}
		if len(got) != 1 {
			t.Fatalf("forced=%v: %d docs, want 1", forced, len(got))
		}
		event, ok := got[0]["event"].(bson.M)
		if !ok {
			t.Fatalf("forced=%v: event slot is %T", forced, got[0]["event"])
		}
		if event["title"] != "Unknown event" {
			t.Errorf("forced=%v: placeholder not applied: %v", forced, event)
		}
	}
}

// Only RelationshipMissing triggers the fallback; everything else
// propagates unchanged without any flat fetches being issued.
func TestFetchWithRelations_OtherErrorsPropagate(t *testing.T) {
	tables, _, _ := seedTables()
	cmdErr := mongo.CommandError{Code: 13, Message: "unauthorized"}

	q := &fakeQuerier{tables: tables, aggErr: cmdErr}
	_, err := New(q, zap.NewNop()).FetchWithRelations(context.Background(), "registrations", bson.M{}, nil, testRelations())

	var ce mongo.CommandError
	if !errors.As(err, &ce) || ce.Code != 13 {
		t.Fatalf("error not propagated unchanged: %v", err)
	}
	if len(q.findCalls) != 0 {
		t.Errorf("fallback ran despite non-relationship error: %v", q.findCalls)
	}
}

// The fallback issues exactly one flat fetch for the base plus one in-set
// fetch per relation, keyed on the distinct foreign keys.
func TestFetchWithRelations_FallbackQueryShape(t *testing.T) {
	tables, eventA, eventGone := seedTables()

	q := &fakeQuerier{tables: tables, relMissing: true}
	_, err := New(q, zap.NewNop()).FetchWithRelations(context.Background(), "registrations", bson.M{}, nil, testRelations())
	if err != nil {
		t.Fatal(err)
	}

	if len(q.findCalls) != 3 {
		t.Fatalf("%d flat fetches, want 3 (base + 2 relations)", len(q.findCalls))
	}
	if q.findCalls[0].collection != "registrations" {
		t.Errorf("first fetch hit %q", q.findCalls[0].collection)
	}

	eventFilter := q.findCalls[1].filter["_id"].(bson.M)["$in"].([]interface{})
	if len(eventFilter) != 2 {
		t.Errorf("event key set = %v, want the 2 distinct event ids", eventFilter)
	}
	found := map[interface{}]bool{}
	for _, k := range eventFilter {
		found[k] = true
	}
	if !found[eventA] || !found[eventGone] {
		t.Errorf("event key set missing ids: %v", eventFilter)
	}
}

func TestFetchWithRelations_FallbackFindErrors(t *testing.T) {
	tables, _, _ := seedTables()
	dialErr := errors.New("dial tcp: connection refused")

	q := &fakeQuerier{
		tables:     tables,
		relMissing: true,
		findErr:    map[string]error{"events": dialErr},
	}
	_, err := New(q, zap.NewNop()).FetchWithRelations(context.Background(), "registrations", bson.M{}, nil, testRelations())
	if !errors.Is(err, dialErr) {
		t.Fatalf("underlying find error lost: %v", err)
	}
}
