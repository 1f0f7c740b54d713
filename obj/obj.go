// Package obj provides an easy way to handle dynamic "objects" in Go.
// An object being basically a map[string]any, which is how schemas, metadata
// and every other free-form payload of the model are represented.
package obj

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// O represents a dynamic object.
// It is just an alias to avoid typing map[string]any until your fingers bleed.
type O = map[string]any

var (
	// ErrNotFound indicates that an object was not found while traversing a [O].
	ErrNotFound = errors.New("traversing object: key not found")

	// ErrInvalidPath indicates that a traversal path is invalid.
	ErrInvalidPath = errors.New("object traversal path is invalid")
)

// Get traverses the given obj using the given path and returns the value (if any)
// of type T. If traversal fails, like part of the path is not an object, an error is returned.
// If traversal succeeds but the value type is different an error is returned.
//
// Path is defined using '.' as delimiter like: "key.nested1.nested2".
// Every segment before the last one MUST be an object. If the entire path is valid
// but the last key is not found an [ErrNotFound] is returned.
func Get[T any](o O, path string) (T, error) {
	var z T
	segments := strings.Split(path, ".")
	if !IsValidPath(path) {
		return z, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	node := o
	for i, key := range segments[:len(segments)-1] {
		anyV, ok := node[key]
		if !ok {
			return z, fmt.Errorf("%w: %q", ErrNotFound, strings.Join(segments[:i+1], "."))
		}
		v, ok := anyV.(O)
		if !ok {
			return z, fmt.Errorf("traversing path %q: at %q: want object got %T", path, key, anyV)
		}
		node = v
	}

	key := segments[len(segments)-1]
	anyV, ok := node[key]
	if !ok {
		return z, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	v, ok := anyV.(T)
	if !ok {
		return z, fmt.Errorf("value at path %q: expected to have type %T but has %T", path, z, anyV)
	}
	return v, nil
}

// Lookup returns the value of key if it is present and has type T.
// Absent keys, nil objects and type mismatches all report false.
func Lookup[T any](o O, key string) (T, bool) {
	v, ok := o[key].(T)
	return v, ok
}

// IsValidPath returns true if the given path is valid for [Get].
// A valid path is non-empty and has no empty segments.
func IsValidPath(path string) bool {
	if path == "" {
		return false
	}
	for segment := range strings.SplitSeq(path, ".") {
		if segment == "" {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of o. Cloning a nil object gives an empty one,
// so the result can always be written to.
func Clone(o O) O {
	if o == nil {
		return O{}
	}
	return maps.Clone(o)
}

// Merge returns a new object with the keys of all given objects.
// Keys on later objects override the ones on earlier objects, nested objects
// are not merged.
func Merge(objs ...O) O {
	merged := O{}
	for _, o := range objs {
		maps.Copy(merged, o)
	}
	return merged
}
