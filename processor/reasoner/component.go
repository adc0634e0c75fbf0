// Package reasoner provides a processor that derives new facts from
// graph entity triples via forward chaining and publishes them back to
// the knowledge graph.
package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semreason/graph"
	"github.com/c360studio/semreason/inference"
	"github.com/c360studio/semreason/rules"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
)

// Component implements the reasoner processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	store *store.Memory

	// The engine and its registry are single-writer; engineMu
	// serializes access across the consumer goroutine, the debounce
	// timer and the rule-watcher reload callback.
	engine   *inference.Engine
	engineMu sync.Mutex

	// JetStream consumer
	consumer jetstream.Consumer
	stream   jetstream.Stream

	// Custom rule file watcher
	ruleWatcher *rules.Watcher

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Debounced recompute
	recomputeMu    sync.Mutex
	recomputeTimer *time.Timer
	published      map[string]bool

	// Metrics
	entitiesProcessed  atomic.Int64
	factsIngested      atomic.Int64
	inferencesComputed atomic.Int64
	computeErrors      atomic.Int64
	lastActivityMu     sync.RWMutex
	lastActivity       time.Time
}

// NewComponent creates a new reasoner processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	// Unmarshal over the defaults so absent fields keep them. This
	// covers boolean defaults the zero-value check idiom cannot.
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.GetLogger()
	mem := store.NewMemory()
	opts := inference.DefaultOptions()
	opts.MaxIterations = config.MaxIterations
	opts.MaxInferences = config.MaxInferences
	opts.Logger = logger

	engine := inference.NewEngine(mem, opts)
	if config.RulesPath != "" {
		custom, err := rules.LoadFile(config.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rule file: %w", err)
		}
		for _, r := range custom {
			if err := engine.AddRule(r); err != nil {
				return nil, fmt.Errorf("register rule %s: %w", r.ID, err)
			}
		}
	}

	return &Component{
		name:       "reasoner",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     logger,
		store:      mem,
		engine:     engine,
		published:  make(map[string]bool),
	}, nil
}

// reloadRules swaps the custom rules after a watched file change.
// AddRule invalidates the engine cache, so the next recompute picks up
// the new catalog.
func (c *Component) reloadRules(loaded []rules.Rule) {
	c.engineMu.Lock()
	for _, r := range loaded {
		c.engine.RemoveRule(r.ID)
		if err := c.engine.AddRule(r); err != nil {
			c.logger.Warn("Skipping invalid rule on reload",
				"rule", r.ID, "error", err)
		}
	}
	c.engineMu.Unlock()
	c.scheduleRecompute(context.Background())
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized reasoner",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"ingest_subject", c.config.IngestSubject)
	return nil
}

// Start begins consuming graph entity messages.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("reasoner already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	js, err := c.natsClient.JetStream()
	if err != nil {
		c.rollbackStart(nil)
		return fmt.Errorf("get jetstream: %w", err)
	}

	stream, err := js.Stream(ctx, c.config.StreamName)
	if err != nil {
		c.rollbackStart(nil)
		return fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}
	c.stream = stream

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.IngestSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       60 * time.Second,
		MaxDeliver:    3,
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerConfig)
	if err != nil {
		c.rollbackStart(nil)
		return fmt.Errorf("create consumer: %w", err)
	}
	c.consumer = consumer

	// Start message consumption
	consumeCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.consumeMessages(consumeCtx)

	if c.config.WatchRules {
		watcher, err := rules.NewWatcher(rules.WatcherConfig{
			Path:     c.config.RulesPath,
			OnReload: c.reloadRules,
			Logger:   c.logger,
		})
		if err != nil {
			c.rollbackStart(cancel)
			return fmt.Errorf("create rule watcher: %w", err)
		}
		if err := watcher.Start(consumeCtx); err != nil {
			_ = watcher.Close()
			c.rollbackStart(cancel)
			return fmt.Errorf("watch rule file: %w", err)
		}
		c.ruleWatcher = watcher
	}

	c.logger.Info("Reasoner component started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"ingest_subject", c.config.IngestSubject)

	return nil
}

// rollbackStart reverts the running state when Start() fails partway through.
func (c *Component) rollbackStart(cancel context.CancelFunc) {
	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// consumeMessages consumes messages from the JetStream consumer.
func (c *Component) consumeMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(16, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}

		if msgs.Error() != nil && ctx.Err() == nil {
			c.logger.Debug("Fetch error", "error", msgs.Error())
		}
	}
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	// Copy cancel function and clear state before releasing lock
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	// Cancel context after releasing lock to avoid potential deadlock
	if cancel != nil {
		cancel()
	}

	c.recomputeMu.Lock()
	if c.recomputeTimer != nil {
		c.recomputeTimer.Stop()
		c.recomputeTimer = nil
	}
	c.recomputeMu.Unlock()

	if c.ruleWatcher != nil {
		if err := c.ruleWatcher.Close(); err != nil {
			c.logger.Warn("Failed to close rule watcher", "error", err)
		}
		c.ruleWatcher = nil
	}

	c.logger.Info("Reasoner component stopped",
		"entities_processed", c.entitiesProcessed.Load(),
		"facts_ingested", c.factsIngested.Load(),
		"inferences_computed", c.inferencesComputed.Load(),
		"compute_errors", c.computeErrors.Load())

	return nil
}

// handleMessage ingests one graph entity message into the store.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	// Check for context cancellation before expensive operations
	if ctx.Err() != nil {
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message during shutdown", "error", err)
		}
		return
	}

	c.entitiesProcessed.Add(1)
	c.updateLastActivity()

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(msg.Data(), &baseMsg); err != nil {
		c.logger.Error("Failed to unmarshal message", "error", err)
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK malformed message", "error", err)
		}
		return
	}

	var entity graph.EntityPayload
	payloadBytes, err := json.Marshal(baseMsg.Payload())
	if err != nil {
		c.logger.Error("Failed to marshal payload", "error", err)
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		return
	}
	if err := json.Unmarshal(payloadBytes, &entity); err != nil {
		c.logger.Error("Failed to unmarshal entity payload", "error", err)
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		return
	}

	added := c.ingest(&entity)
	if added > 0 {
		c.factsIngested.Add(int64(added))
		metrics.factsIngestedTotal.Add(float64(added))
		metrics.storedFacts.Set(float64(c.store.Len()))
		c.noteNewFacts(ctx)
	}

	c.logger.Debug("Ingested entity",
		"entity_id", entity.EntityID(),
		"triples", len(entity.Triples()),
		"added", added)

	if err := msg.Ack(); err != nil {
		c.logger.Warn("Failed to ACK message", "error", err)
	}
}

// ingest adds an entity's triples to the store, skipping triples the
// reasoner itself published. Returns the number of new triples.
func (c *Component) ingest(entity *graph.EntityPayload) int {
	wire := entity.Triples()
	converted := entity.ToTriples()
	added := 0
	for i, mt := range wire {
		if mt.Source == graph.DerivedSource {
			continue
		}
		if c.store.Add(converted[i]) {
			added++
		}
	}
	return added
}

// noteNewFacts invalidates the cached inference set and arms the
// debounce timer after new triples land in the store.
func (c *Component) noteNewFacts(ctx context.Context) {
	c.engineMu.Lock()
	c.engine.InvalidateCache()
	c.engineMu.Unlock()
	c.scheduleRecompute(ctx)
}

// scheduleRecompute arms the debounce timer, replacing any pending one.
func (c *Component) scheduleRecompute(ctx context.Context) {
	c.recomputeMu.Lock()
	defer c.recomputeMu.Unlock()

	if c.recomputeTimer != nil {
		c.recomputeTimer.Stop()
	}
	c.recomputeTimer = time.AfterFunc(c.config.DebounceDelay, func() {
		c.recompute(ctx)
	})
}

// recompute runs the engine to fixed point and publishes newly derived
// facts to the graph.
func (c *Component) recompute(ctx context.Context) {
	started := time.Now()
	c.engineMu.Lock()
	facts, err := c.engine.ComputeInferences(ctx)
	c.engineMu.Unlock()
	metrics.recomputesTotal.Inc()
	if err != nil {
		c.computeErrors.Add(1)
		metrics.computeErrorsTotal.Inc()
		c.logger.Error("Failed to compute inferences", "error", err)
		return
	}

	var fresh []*inference.InferredFact
	c.recomputeMu.Lock()
	for _, fact := range facts {
		key := fact.Triple.Key()
		if !c.published[key] {
			c.published[key] = true
			fresh = append(fresh, fact)
		}
	}
	c.recomputeMu.Unlock()

	c.inferencesComputed.Add(int64(len(fresh)))
	metrics.inferencesComputedTotal.Add(float64(len(fresh)))

	c.logger.Info("Recomputed inferences",
		"total", len(facts),
		"new", len(fresh),
		"elapsed", time.Since(started))

	if !c.config.PublishDerived || len(fresh) == 0 {
		return
	}
	if err := graph.PublishInferred(ctx, c.natsClient, fresh); err != nil {
		c.computeErrors.Add(1)
		metrics.computeErrorsTotal.Inc()
		c.logger.Error("Failed to publish derived facts", "error", err)
	}
}

// Fact lookup for embedding hosts.

// Store exposes the component's triple store.
func (c *Component) Store() store.TripleStore { return c.store }

// Justify explains how a triple is supported.
func (c *Component) Justify(ctx context.Context, t triple.Triple) (*inference.Justification, error) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	return c.engine.Justify(ctx, t)
}

// updateLastActivity updates the last activity timestamp.
func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "reasoner",
		Type:        "processor",
		Description: "Derives new facts from graph entity triples via forward chaining",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionInput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionOutput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return reasonerSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.computeErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
