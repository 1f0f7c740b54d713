package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/obj"
)

// createBucket creates or replaces a bucket and makes it current.
// A bucket with the same name in another casing is replaced, keeping the new casing.
func createBucket(s State, cmd command.Command) State {
	buckets := obj.OmitFold(s.Buckets, cmd.Name)
	buckets[cmd.Name] = obj.Clone(cmd.DataObject())
	s.Buckets = buckets
	s.CurrentBucket = cmd.Name
	return s
}

// removeBucket removes the bucket and all its collections. Removing an unknown
// bucket still resets the current bucket.
func removeBucket(s State, cmd command.Command) State {
	s.Buckets = obj.OmitFold(s.Buckets, cmd.Name)
	s.Entities = slices.DeleteFunc(slices.Clone(s.Entities), func(e Entity) bool {
		return obj.EqualFold(e.BucketName, cmd.Name)
	})
	s.CurrentBucket = DefaultBucket
	return s
}

func useBucket(s State, cmd command.Command) State {
	s.CurrentBucket = cmd.BucketName
	return s
}

// addBucketData appends the command data to the rows stored under its key.
func addBucketData(s State, bucket string, cmd command.Command) (State, error) {
	name, ok := obj.KeyFold(s.Buckets, bucket)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	b := obj.Clone(s.Buckets[name])
	rows, _ := obj.Lookup[[]any](b, cmd.Key)
	b[cmd.Key] = appendTo(rows, cmd.Data)

	buckets := maps.Clone(s.Buckets)
	buckets[name] = b
	s.Buckets = buckets
	return s, nil
}
