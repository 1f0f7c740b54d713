package model

import (
	"maps"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/obj"
)

// createDefinition stores a definition, replacing any previous one with the same name.
func createDefinition(s State, cmd command.Command) State {
	defs := maps.Clone(s.Definitions)
	if defs == nil {
		defs = map[string]Definition{}
	}
	defs[cmd.Name] = Definition{Type: UDT, Properties: cmd.Properties}
	s.Definitions = defs
	return s
}

// createView captures the view query from the script using the command select offsets.
func createView(s State, bucket string, cmd command.Command, script string) State {
	stmt := "AS " + substring(script, cmd.Select.Start, cmd.Select.Stop)
	v := View{
		CollectionName: cmd.CollectionName,
		BucketName:     bucket,
		Data:           obj.Merge(cmd.DataObject(), obj.O{"selectStatement": stmt}),
		Attributes:     cmd.Attributes("data", "bucketName", "collectionName"),
	}
	s.Views = appendTo(s.Views, v)
	return s
}

func addRelationship(s State, bucket string, cmd command.Command) State {
	rel := Relationship{
		ChildCollection:   cmd.ChildCollection,
		ParentCollection:  cmd.ParentCollection,
		ChildField:        cmd.ChildField,
		ParentField:       cmd.ParentField,
		RelationshipType:  ForeignKey,
		ChildCardinality:  OneCardinality,
		ParentCardinality: OneCardinality,
		Name:              cmd.RelationshipName,
		ChildDbName:       or(cmd.ChildDbName, bucket),
		DbName:            or(cmd.DbName, bucket),
	}
	s.Relationships = appendTo(s.Relationships, rel)
	return s
}

// substring returns the characters of s in [start, stop). Offsets are clamped
// to the string and swapped when start > stop, so it never fails.
func substring(s string, start, stop int) string {
	runes := []rune(s)
	start = clamp(start, len(runes))
	stop = clamp(stop, len(runes))
	if start > stop {
		start, stop = stop, start
	}
	return string(runes[start:stop])
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
