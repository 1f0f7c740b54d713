package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/slog"
)

// Fold errors.
var (
	// ErrUnknownBucket is returned when rows are added to a bucket that was never created.
	// It is a caller defect, the fold stops on it.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrEntityNotFound is the reason a command addressing a missing collection is skipped.
	ErrEntityNotFound = errors.New("collection not found")

	// ErrIndexNotFound is the reason an index removal is skipped.
	ErrIndexNotFound = errors.New("index not found")

	// ErrUnknownCommand is the reason a command with a missing or unknown type is skipped.
	ErrUnknownCommand = errors.New("unknown command type")
)

// Fold applies all commands, in order, starting from [New].
// The script is the text the commands were parsed from, views capture their
// query from it by offset.
//
// Commands that reference missing collections or indexes, or that have an
// unknown type, change nothing and are logged at debug level.
// The only error is [ErrUnknownBucket], in which case the state reached before the
// failing command is returned together with the error.
func Fold(ctx context.Context, cmds command.List, script string) (State, error) {
	start := time.Now()
	state := New()
	for i, cmd := range cmds {
		next, err := Apply(ctx, state, cmd, script)
		if err != nil {
			sampleFold(time.Since(start), err)
			return state, fmt.Errorf("applying command %d (%s): %w", i, cmd.Type, err)
		}
		state = next
	}
	sampleFold(time.Since(start), nil)
	return state, nil
}

// Apply applies a single command to the given state, returning the next state.
// The given state is not modified.
func Apply(ctx context.Context, s State, cmd command.Command, script string) (State, error) {
	bucket := cmd.BucketName
	if bucket == "" {
		bucket = s.CurrentBucket
	}

	next, err := dispatch(s, bucket, cmd, script)
	switch {
	case err == nil:
		sampleCommand(cmd.Type, statusApplied)
		return next, nil
	case isSkip(err):
		sampleCommand(cmd.Type, statusSkipped)
		slog.FromCtx(ctx).Debug("command skipped",
			"command", string(cmd.Type),
			"bucket", bucket,
			"collection", cmd.CollectionName,
			"reason", err.Error())
		return s, nil
	default:
		sampleCommand(cmd.Type, statusError)
		return s, err
	}
}

func dispatch(s State, bucket string, cmd command.Command, script string) (State, error) {
	switch cmd.Type {
	case command.CreateCollection:
		return createCollection(s, bucket, cmd), nil
	case command.RemoveCollection:
		return removeCollection(s, bucket, cmd)
	case command.CreateBucket:
		return createBucket(s, cmd), nil
	case command.RemoveBucket:
		return removeBucket(s, cmd), nil
	case command.UseBucket:
		return useBucket(s, cmd), nil
	case command.CreateDefinition:
		return createDefinition(s, cmd), nil
	case command.AddFieldsToCollection:
		return addFields(s, bucket, cmd)
	case command.RenameField:
		return renameField(s, bucket, cmd)
	case command.CreateView:
		return createView(s, bucket, cmd, script), nil
	case command.AddBucketData:
		return addBucketData(s, bucket, cmd)
	case command.AddCollectionLevelIndex:
		return addIndex(s, bucket, cmd)
	case command.RemoveCollectionLevelIndex:
		return removeIndex(s, bucket, cmd)
	case command.AddRelationship:
		return addRelationship(s, bucket, cmd), nil
	case command.UpdateColumn:
		return updateColumn(s, bucket, cmd)
	}
	return s, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

func isSkip(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrIndexNotFound) ||
		errors.Is(err, ErrUnknownCommand)
}

func entityNotFound(bucket, collection string) error {
	return fmt.Errorf("%w: %q.%q", ErrEntityNotFound, bucket, collection)
}
