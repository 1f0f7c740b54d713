// Package command defines the commands produced by parsing a database
// definition script. Each command drives one step of the model fold.
package command

import (
	"encoding/json"

	"github.com/birdie-ai/remodel/obj"
)

type (
	// Type is the tag selecting how a command is handled.
	// The spelling of each tag is the contract with the script parser.
	Type string

	// Command is a single parsed statement.
	// Only the fields relevant to its [Type] are set, see each [Type] constant.
	Command struct {
		Type Type `json:"type"`
		// BucketName overrides the current bucket for this command only.
		BucketName      string `json:"bucketName,omitempty"`
		CollectionName  string `json:"collectionName,omitempty"`
		TableLikeName   string `json:"tableLikeName,omitempty"`
		Name            string `json:"name,omitempty"`
		Schema          obj.O  `json:"schema,omitempty"`
		EntityLevelData obj.O  `json:"entityLevelData,omitempty"`
		Properties      obj.O  `json:"properties,omitempty"`
		Data            any    `json:"data,omitempty"`
		NameFrom        string `json:"nameFrom,omitempty"`
		NameTo          string `json:"nameTo,omitempty"`
		Select          Span   `json:"select,omitzero"`
		Key             string `json:"key,omitempty"`
		Columns         []any  `json:"columns,omitempty"`
		IndexName       string `json:"indexName,omitempty"`

		ChildCollection  string `json:"childCollection,omitempty"`
		ParentCollection string `json:"parentCollection,omitempty"`
		ChildField       string `json:"childField,omitempty"`
		ParentField      string `json:"parentField,omitempty"`
		RelationshipName string `json:"relationshipName,omitempty"`
		ChildDbName      string `json:"childDbName,omitempty"`
		DbName           string `json:"dbName,omitempty"`

		// Raw is the command record as decoded, including fields with no
		// dedicated struct field. It is nil for commands built in code.
		Raw obj.O `json:"-"`
	}

	// List is an ordered list of commands.
	List []Command

	// Span is a character range [Start, Stop) of the original script.
	Span struct {
		Start int `json:"start"`
		Stop  int `json:"stop"`
	}

	// ColumnUpdate is the payload of an [UpdateColumn] command.
	ColumnUpdate struct {
		Fields []string
		Type   string
		Value  any
	}
)

// All command types.
const (
	// CreateCollection uses CollectionName, BucketName, TableLikeName, Schema and EntityLevelData.
	CreateCollection Type = "createCollection"
	// RemoveCollection uses CollectionName.
	RemoveCollection Type = "removeCollection"
	// CreateBucket uses Name and Data (an object).
	CreateBucket Type = "createBucket"
	// RemoveBucket uses Name.
	RemoveBucket Type = "removeBucket"
	// UseBucket uses BucketName.
	UseBucket Type = "useBucket"
	// CreateDefinition uses Name and Properties.
	CreateDefinition Type = "createDefinition"
	// AddFieldsToCollection uses CollectionName and Data (field name to descriptor).
	AddFieldsToCollection Type = "addFieldsToCollection"
	// RenameField uses CollectionName, NameFrom and NameTo.
	RenameField Type = "renameField"
	// CreateView uses Select and Data, every other field is kept on the view.
	CreateView Type = "createView"
	// AddBucketData uses Key and Data (any value).
	AddBucketData Type = "addBucketData"
	// AddCollectionLevelIndex uses CollectionName, Name, Columns and Data.
	AddCollectionLevelIndex Type = "addCollectionLevelIndex"
	// RemoveCollectionLevelIndex uses CollectionName and IndexName.
	RemoveCollectionLevelIndex Type = "removeCollectionLevelIndex"
	// AddRelationship uses the relationship fields.
	AddRelationship Type = "addRelationship"
	// UpdateColumn uses CollectionName and Data ({fields, type, value}).
	UpdateColumn Type = "updateColumn"
)

var types = []Type{
	CreateCollection, RemoveCollection, CreateBucket, RemoveBucket, UseBucket,
	CreateDefinition, AddFieldsToCollection, RenameField, CreateView, AddBucketData,
	AddCollectionLevelIndex, RemoveCollectionLevelIndex, AddRelationship, UpdateColumn,
}

// Types returns all known command types.
func Types() []Type {
	return append([]Type(nil), types...)
}

// Known reports whether t is one of the known command types.
func (t Type) Known() bool {
	for _, known := range types {
		if t == known {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes the command and keeps the raw record on [Command.Raw].
func (c *Command) UnmarshalJSON(data []byte) error {
	// fields has no methods, avoiding recursion.
	type fields Command
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw obj.O
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Command(f)
	c.Raw = raw
	return nil
}

// DataObject returns [Command.Data] as an object, or nil if it is not one.
func (c Command) DataObject() obj.O {
	o, _ := c.Data.(obj.O)
	return o
}

// ColumnUpdate returns the payload of an [UpdateColumn] command.
// Malformed payloads give an update with no fields, which changes nothing.
func (c Command) ColumnUpdate() ColumnUpdate {
	data := c.DataObject()
	var update ColumnUpdate
	update.Type, _ = obj.Lookup[string](data, "type")
	update.Value = data["value"]

	switch fields := data["fields"].(type) {
	case []string:
		update.Fields = fields
	case []any:
		for _, f := range fields {
			if name, ok := f.(string); ok {
				update.Fields = append(update.Fields, name)
			}
		}
	}
	return update
}

// Attributes returns the raw record without the given keys.
// The result is a new object and always writable.
func (c Command) Attributes(without ...string) obj.O {
	attrs := obj.Clone(c.Raw)
	for _, key := range without {
		delete(attrs, key)
	}
	return attrs
}
