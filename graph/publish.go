// Package graph publishes reasoning output to the knowledge graph.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semreason/inference"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// DerivedSource marks triples produced by the inference engine.
const DerivedSource = "semreason.reasoner"

// EntityIngestMessage is the message format for graph ingestion.
// Matches the format used by other semstreams components.
type EntityIngestMessage struct {
	ID        string           `json:"id"`
	Triples   []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// PublishInferred publishes derived facts to the knowledge graph, one
// entity message per subject.
func PublishInferred(ctx context.Context, nc *natsclient.Client, facts []*inference.InferredFact) error {
	if nc == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}

	for _, msg := range BuildIngestMessages(facts) {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal derived entity %s: %w", msg.ID, err)
		}
		if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
			return fmt.Errorf("publish derived entity %s: %w", msg.ID, err)
		}
	}

	return nil
}

// BuildIngestMessages groups derived facts by subject into ingest
// messages, preserving first-seen subject order.
func BuildIngestMessages(facts []*inference.InferredFact) []EntityIngestMessage {
	var order []string
	grouped := make(map[string][]message.Triple)

	for _, fact := range facts {
		t := fact.Triple
		if _, seen := grouped[t.Subject]; !seen {
			order = append(order, t.Subject)
		}
		grouped[t.Subject] = append(grouped[t.Subject], message.Triple{
			Subject:    t.Subject,
			Predicate:  t.Predicate,
			Object:     t.Object,
			Source:     DerivedSource,
			Timestamp:  fact.Timestamp,
			Confidence: fact.Confidence,
		})
	}

	msgs := make([]EntityIngestMessage, 0, len(order))
	for _, subject := range order {
		triples := grouped[subject]
		updated := time.Time{}
		for _, t := range triples {
			if t.Timestamp.After(updated) {
				updated = t.Timestamp
			}
		}
		msgs = append(msgs, EntityIngestMessage{
			ID:        subject,
			Triples:   triples,
			UpdatedAt: updated,
		})
	}
	return msgs
}
