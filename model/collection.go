package model

import (
	"fmt"
	"slices"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/obj"
)

// command fields that become typed entity fields instead of attributes.
var entityFields = []string{"collectionName", "bucketName", "schema", "entityLevelData"}

func createCollection(s State, bucket string, cmd command.Command) State {
	e := newEntity(s.Entities, cmd)
	if e.BucketName == "" {
		e.BucketName = bucket
		s.Entities = appendTo(s.Entities, e)
		return s
	}
	if s.CurrentBucket == DefaultBucket {
		s.BucketName = e.BucketName
	}
	s.Entities = appendTo(s.Entities, e)
	return s
}

// newEntity builds the entity of a create command. A collection created LIKE
// another one inherits its schema and metadata, keeping its own names.
// When the referenced collection does not exist the command is used as is.
func newEntity(entities []Entity, cmd command.Command) Entity {
	own := Entity{
		CollectionName:  cmd.CollectionName,
		BucketName:      cmd.BucketName,
		Schema:          cmd.Schema,
		EntityLevelData: cmd.EntityLevelData,
		Attributes:      cmd.Attributes(entityFields...),
	}
	if cmd.TableLikeName == "" {
		return own
	}
	i := slices.IndexFunc(entities, func(e Entity) bool {
		return e.CollectionName == cmd.TableLikeName
	})
	if i == -1 {
		return own
	}
	ref := entities[i]
	ref.CollectionName = cmd.CollectionName
	ref.BucketName = cmd.BucketName
	ref.EntityLevelData = obj.Merge(ref.EntityLevelData, cmd.EntityLevelData)
	return ref
}

func removeCollection(s State, bucket string, cmd command.Command) (State, error) {
	i := findEntity(s.Entities, bucket, cmd.CollectionName)
	if i == -1 {
		return s, entityNotFound(bucket, cmd.CollectionName)
	}
	s.Entities = slices.Delete(slices.Clone(s.Entities), i, i+1)
	return s, nil
}

func addFields(s State, bucket string, cmd command.Command) (State, error) {
	return updateEntity(s, bucket, cmd.CollectionName, func(e Entity) (Entity, error) {
		return e.withProperties(obj.Merge(e.Properties(), cmd.DataObject())), nil
	})
}

// renameField moves a field to a new name. The moved value is resolved from the
// entity record (its attributes), not from its schema properties. A name the
// record does not have leaves the new key unset, so the field is dropped.
func renameField(s State, bucket string, cmd command.Command) (State, error) {
	return updateEntity(s, bucket, cmd.CollectionName, func(e Entity) (Entity, error) {
		props := obj.OmitFold(e.Properties(), cmd.NameFrom)
		if v, ok := e.field(cmd.NameFrom); ok {
			props[cmd.NameTo] = v
		}
		return e.withProperties(props), nil
	})
}

func addIndex(s State, bucket string, cmd command.Command) (State, error) {
	return updateEntity(s, bucket, cmd.CollectionName, func(e Entity) (Entity, error) {
		idx := obj.Merge(obj.O{"name": cmd.Name, "SecIndxKey": cmd.Columns}, cmd.DataObject())
		return e.withIndexes(appendTo(secIndxs(e.EntityLevelData), any(idx))), nil
	})
}

func removeIndex(s State, bucket string, cmd command.Command) (State, error) {
	return updateEntity(s, bucket, cmd.CollectionName, func(e Entity) (Entity, error) {
		idxs := secIndxs(e.EntityLevelData)
		kept := slices.DeleteFunc(slices.Clone(idxs), func(v any) bool {
			idx, _ := v.(obj.O)
			name, _ := obj.Lookup[string](idx, "name")
			return name == cmd.IndexName
		})
		if len(kept) == len(idxs) {
			return e, fmt.Errorf("%w: %q", ErrIndexNotFound, cmd.IndexName)
		}
		return e.withIndexes(kept), nil
	})
}

// updateColumn sets one attribute on the listed fields. Other fields are kept as they are.
func updateColumn(s State, bucket string, cmd command.Command) (State, error) {
	return updateEntity(s, bucket, cmd.CollectionName, func(e Entity) (Entity, error) {
		update := cmd.ColumnUpdate()
		props := e.Properties()
		updated := make(obj.O, len(props))
		for name, field := range props {
			if !slices.Contains(update.Fields, name) {
				updated[name] = field
				continue
			}
			descriptor, _ := field.(obj.O)
			updated[name] = obj.Merge(descriptor, obj.O{update.Type: update.Value})
		}
		return e.withProperties(updated), nil
	})
}

// updateEntity replaces the entity matching bucket and collection with the result of fn.
func updateEntity(s State, bucket, collection string, fn func(Entity) (Entity, error)) (State, error) {
	i := findEntity(s.Entities, bucket, collection)
	if i == -1 {
		return s, entityNotFound(bucket, collection)
	}
	e, err := fn(s.Entities[i])
	if err != nil {
		return s, err
	}
	s.Entities = replaceAt(s.Entities, i, e)
	return s, nil
}
