// Package event publishes reverse-engineered documents as events, so
// downstream consumers (like the modeling tool) can pick them up from a topic.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/birdie-ai/remodel/model"
	"github.com/birdie-ai/remodel/redoc"
	"github.com/birdie-ai/remodel/tracing"
	"gocloud.dev/pubsub"
	"golang.org/x/time/rate"
)

// Event names.
const (
	// CollectionEvent carries a single [redoc.Document].
	CollectionEvent = "collection"
	// RelationshipsEvent carries all relationships of a run.
	RelationshipsEvent = "relationships"
)

type (
	// Publisher publishes the documents of a [redoc.Result] to a topic.
	Publisher struct {
		topic   *pubsub.Topic
		limiter *rate.Limiter
	}

	// PublisherOption configures a [Publisher].
	PublisherOption func(*Publisher)

	// Envelope represents the general structure of the body of events.
	Envelope[T any] struct {
		RunID  string `json:"run_id"`
		Source string `json:"source"`
		Name   string `json:"name"`
		Event  T      `json:"event"`
	}
)

// OpenTopic opens the topic at the given URL, like "gcppubsub://projects/p/topics/t" or "mem://t".
// The driver for the URL scheme must be imported by the caller.
func OpenTopic(ctx context.Context, url string) (*pubsub.Topic, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening topic %q: %w", url, err)
	}
	return topic, nil
}

// NewPublisher creates a new publisher for the given topic.
func NewPublisher(t *pubsub.Topic, opts ...PublisherOption) *Publisher {
	p := &Publisher{topic: t}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithRateLimit limits the publisher to perSecond events per second, shared by
// all concurrent [Publisher.Publish] calls. Zero or negative means no limit.
func WithRateLimit(perSecond float64) PublisherOption {
	return func(p *Publisher) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// Publish sends one [CollectionEvent] per document, in order, followed by a single
// [RelationshipsEvent]. Run tracing info on the context is added to every envelope.
// It stops on the first failure.
func (p *Publisher) Publish(ctx context.Context, res redoc.Result) error {
	for _, doc := range res.Documents {
		attrs := map[string]string{
			"db":         doc.Doc.DbName,
			"collection": doc.ObjectNames.CollectionName,
		}
		if err := p.send(ctx, CollectionEvent, doc, attrs); err != nil {
			return fmt.Errorf("publishing collection %q: %w", doc.ObjectNames.CollectionName, err)
		}
	}
	rels := res.Relationships
	if rels == nil {
		rels = []model.Relationship{}
	}
	if err := p.send(ctx, RelationshipsEvent, rels, nil); err != nil {
		return fmt.Errorf("publishing relationships: %w", err)
	}
	return nil
}

// Shutdown flushes pending events and shuts the topic down.
func (p *Publisher) Shutdown(ctx context.Context) error {
	return p.topic.Shutdown(ctx)
}

func (p *Publisher) send(ctx context.Context, name string, event any, attrs map[string]string) error {
	if p.limiter != nil {
		start := time.Now()
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting publish rate limit: %w", err)
		}
		samplePublishWait(name, time.Since(start))
	}
	body, err := serializeEvent(ctx, name, event)
	if err != nil {
		return err
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs["name"] = name

	start := time.Now()
	err = p.topic.Send(ctx, &pubsub.Message{
		Body:     body,
		Metadata: attrs,
	})
	samplePublish(name, time.Since(start), len(body), err)
	return err
}

func serializeEvent[T any](ctx context.Context, name string, event T) ([]byte, error) {
	runID, _ := tracing.CtxGetRunID(ctx)
	source, _ := tracing.CtxGetSource(ctx)
	body, err := json.Marshal(Envelope[T]{
		RunID:  runID,
		Source: source,
		Name:   name,
		Event:  event,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing %s event: %w", name, err)
	}
	return body, nil
}
