// Package model folds parsed commands into an in-memory model of databases:
// buckets, their collections, views, relationships and shared definitions.
//
// The fold is pure. Each step returns a new [State] and never modifies the
// previous one, so any intermediate state stays valid after later steps.
package model

import (
	"encoding/json"
	"slices"

	"github.com/birdie-ai/remodel/obj"
)

// DefaultBucket is the bucket collections belong to until a bucket is created or used.
const DefaultBucket = "New database"

type (
	// State is the model built by the fold.
	State struct {
		// Entities in creation order.
		Entities []Entity
		// Views in creation order.
		Views []View
		// CurrentBucket is the bucket commands apply to when they name none.
		// It is never validated against Buckets.
		CurrentBucket string
		// Buckets are keyed by bucket name. Keys are unique ignoring case,
		// the stored key keeps the casing it was created with.
		Buckets map[string]Bucket
		// Definitions are keyed by definition name.
		Definitions map[string]Definition
		// Relationships in creation order.
		Relationships []Relationship
		// BucketName is the bucket of the last collection created with an explicit
		// bucket while CurrentBucket was still DefaultBucket. It is only reported,
		// the fold never reads it.
		BucketName string
	}

	// Bucket is the free-form metadata of a bucket. Rows added to the bucket are
	// accumulated on the same object, as a list under their data key.
	Bucket = obj.O

	// Entity is a collection.
	Entity struct {
		CollectionName string
		BucketName     string
		// Schema is a JSON schema, fields live in its "properties" object.
		Schema obj.O
		// EntityLevelData is free-form metadata, secondary indexes live in its "SecIndxs" list.
		EntityLevelData obj.O
		// Attributes are the remaining fields of the command that created the entity.
		Attributes obj.O
	}

	// View is a virtual collection defined by a query.
	View struct {
		CollectionName string
		BucketName     string
		// Data carries the captured "selectStatement" and any other view data.
		Data obj.O
		// Attributes are the remaining fields of the command that created the view.
		Attributes obj.O
	}

	// Definition is a named user defined type shared by all collections.
	Definition struct {
		Type       string `json:"type"`
		Properties obj.O  `json:"properties"`
	}

	// Relationship is a foreign key from a child collection to a parent collection.
	Relationship struct {
		ChildCollection   string `json:"childCollection"`
		ParentCollection  string `json:"parentCollection"`
		ChildField        string `json:"childField"`
		ParentField       string `json:"parentField"`
		RelationshipType  string `json:"relationshipType"`
		ChildCardinality  string `json:"childCardinality"`
		ParentCardinality string `json:"parentCardinality"`
		Name              string `json:"name"`
		ChildDbName       string `json:"childDbName"`
		DbName            string `json:"dbName"`
	}
)

// Fixed values of every [Relationship] and [Definition].
const (
	ForeignKey     = "Foreign Key"
	OneCardinality = "1"
	UDT            = "udt"
)

const (
	propertiesKey = "properties"
	secIndxsKey   = "SecIndxs"
)

// New creates the initial state of the fold.
func New() State {
	return State{
		Entities:      []Entity{},
		Views:         []View{},
		CurrentBucket: DefaultBucket,
		Buckets:       map[string]Bucket{},
		Definitions:   map[string]Definition{},
		Relationships: []Relationship{},
	}
}

// Bucket returns the bucket with the given name, ignoring case.
func (s State) Bucket(name string) (Bucket, bool) {
	key, ok := obj.KeyFold(s.Buckets, name)
	if !ok {
		return nil, false
	}
	return s.Buckets[key], true
}

// Entity returns the entity with the given bucket and collection names, ignoring case on both.
func (s State) Entity(bucket, collection string) (Entity, bool) {
	i := findEntity(s.Entities, bucket, collection)
	if i == -1 {
		return Entity{}, false
	}
	return s.Entities[i], true
}

// Properties returns the fields of the entity schema.
func (e Entity) Properties() obj.O {
	props, _ := obj.Lookup[obj.O](e.Schema, propertiesKey)
	return props
}

// Indexes returns the secondary indexes of the entity.
func (e Entity) Indexes() []obj.O {
	var idxs []obj.O
	for _, v := range secIndxs(e.EntityLevelData) {
		if idx, ok := v.(obj.O); ok {
			idxs = append(idxs, idx)
		}
	}
	return idxs
}

// field resolves a field of the entity record itself, as opposed to a field of its schema.
func (e Entity) field(name string) (any, bool) {
	switch name {
	case "collectionName":
		return e.CollectionName, true
	case "bucketName":
		return e.BucketName, true
	case "schema":
		return e.Schema, e.Schema != nil
	case "entityLevelData":
		return e.EntityLevelData, e.EntityLevelData != nil
	}
	v, ok := e.Attributes[name]
	return v, ok
}

func (e Entity) withProperties(props obj.O) Entity {
	schema := obj.Clone(e.Schema)
	schema[propertiesKey] = props
	e.Schema = schema
	return e
}

func (e Entity) withIndexes(idxs []any) Entity {
	eld := obj.Clone(e.EntityLevelData)
	eld[secIndxsKey] = idxs
	e.EntityLevelData = eld
	return e
}

// MarshalJSON encodes the view as a single object: its attributes plus
// collection, bucket and data.
func (v View) MarshalJSON() ([]byte, error) {
	o := obj.Clone(v.Attributes)
	if v.CollectionName != "" {
		o["collectionName"] = v.CollectionName
	}
	o["bucketName"] = v.BucketName
	o["data"] = v.Data
	return json.Marshal(o)
}

func secIndxs(eld obj.O) []any {
	idxs, _ := obj.Lookup[[]any](eld, secIndxsKey)
	return idxs
}

func findEntity(entities []Entity, bucket, collection string) int {
	return slices.IndexFunc(entities, func(e Entity) bool {
		return obj.EqualFold(e.BucketName, bucket) && obj.EqualFold(e.CollectionName, collection)
	})
}

// replaceAt returns a copy of list with the element at i replaced by v.
func replaceAt[T any](list []T, i int, v T) []T {
	res := slices.Clone(list)
	res[i] = v
	return res
}

// appendTo returns a copy of list with v appended, list is never written to.
func appendTo[T any](list []T, v T) []T {
	return append(slices.Clip(list), v)
}
