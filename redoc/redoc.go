// Package redoc projects a folded model into reverse-engineered documents,
// one per collection, as consumed by the modeling tool.
package redoc

import (
	"context"
	"fmt"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/model"
	"github.com/birdie-ai/remodel/obj"
)

type (
	// Result is the projection of a model.
	Result struct {
		Documents     []Document           `json:"result"`
		Relationships []model.Relationship `json:"relationships"`
	}

	// Document is the reverse-engineered document of a single collection.
	Document struct {
		ObjectNames ObjectNames `json:"objectNames"`
		Doc         Doc         `json:"doc"`
		JSONSchema  obj.O       `json:"jsonSchema,omitempty"`
	}

	// ObjectNames identifies the collection of a [Document].
	ObjectNames struct {
		CollectionName string `json:"collectionName"`
	}

	// Doc joins a collection with its bucket, the shared definitions and its views.
	Doc struct {
		DbName           string           `json:"dbName"`
		CollectionName   string           `json:"collectionName"`
		ModelDefinitions ModelDefinitions `json:"modelDefinitions"`
		BucketInfo       model.Bucket     `json:"bucketInfo"`
		EntityLevel      obj.O            `json:"entityLevel,omitempty"`
		Views            []model.View     `json:"views"`
	}

	// ModelDefinitions wraps the definitions shared by all documents.
	ModelDefinitions struct {
		Definitions map[string]model.Definition `json:"definitions"`
	}
)

// Convert folds the commands and projects the resulting model.
// The script is the text the commands were parsed from.
func Convert(ctx context.Context, cmds command.List, script string) (Result, error) {
	state, err := model.Fold(ctx, cmds, script)
	if err != nil {
		return Result{}, fmt.Errorf("folding commands: %w", err)
	}
	return Project(state), nil
}

// Project creates one document per entity of the given state, in entity order.
// Relationships are passed through as they are.
func Project(s model.State) Result {
	docs := make([]Document, 0, len(s.Entities))
	for _, e := range s.Entities {
		bucketInfo, ok := s.Bucket(e.BucketName)
		if !ok {
			bucketInfo = model.Bucket{}
		}
		docs = append(docs, Document{
			ObjectNames: ObjectNames{CollectionName: e.CollectionName},
			Doc: Doc{
				DbName:           e.BucketName,
				CollectionName:   e.CollectionName,
				ModelDefinitions: ModelDefinitions{Definitions: s.Definitions},
				BucketInfo:       bucketInfo,
				EntityLevel:      e.EntityLevelData,
				Views:            viewsOf(s.Views, e.CollectionName),
			},
			JSONSchema: e.Schema,
		})
	}

	rels := s.Relationships
	if rels == nil {
		rels = []model.Relationship{}
	}
	return Result{Documents: docs, Relationships: rels}
}

func viewsOf(views []model.View, collection string) []model.View {
	related := []model.View{}
	for _, v := range views {
		if v.CollectionName == collection {
			related = append(related, v)
		}
	}
	return related
}
