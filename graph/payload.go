package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semreason/triple"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "entity",
		Version:     "v1",
		Description: "Entity payload for graph ingestion with triples",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("failed to register EntityPayload: " + err.Error())
	}
}

// EntityType is the message type for graph entity payloads.
var EntityType = message.Type{Domain: "graph", Category: "entity", Version: "v1"}

// EntityPayload implements message.Payload and graph.Graphable for entity ingestion.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type Alias EntityPayload
	return json.Marshal((*Alias)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type Alias EntityPayload
	return json.Unmarshal(data, (*Alias)(e))
}

// ToTriples converts the payload's wire triples into the reasoning
// model. Non-string objects become typed literals.
func (e *EntityPayload) ToTriples() []triple.Triple {
	out := make([]triple.Triple, 0, len(e.TripleData))
	for _, mt := range e.TripleData {
		out = append(out, fromWire(mt))
	}
	return out
}

// fromWire maps a semstreams triple to the reasoning model.
func fromWire(mt message.Triple) triple.Triple {
	switch v := mt.Object.(type) {
	case string:
		return triple.New(mt.Subject, mt.Predicate, v)
	case bool:
		return triple.NewLiteral(mt.Subject, mt.Predicate, fmt.Sprintf("%t", v), "xsd:boolean")
	case int, int32, int64:
		return triple.NewLiteral(mt.Subject, mt.Predicate, fmt.Sprintf("%d", v), "xsd:integer")
	case float32, float64:
		// JSON numbers arrive as float64; render whole values as
		// integers so round-tripped counts keep their form.
		f, ok := v.(float64)
		if !ok {
			f = float64(v.(float32))
		}
		if f == float64(int64(f)) {
			return triple.NewLiteral(mt.Subject, mt.Predicate, fmt.Sprintf("%d", int64(f)), "xsd:integer")
		}
		return triple.NewLiteral(mt.Subject, mt.Predicate, fmt.Sprintf("%g", f), "xsd:decimal")
	default:
		return triple.NewLiteral(mt.Subject, mt.Predicate, fmt.Sprintf("%v", v), "")
	}
}
