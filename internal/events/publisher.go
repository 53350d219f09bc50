// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package events publishes domain events after content is served.
//
// With events.enabled the publisher writes to NATS JetStream through
// watermill-nats, guarded by a circuit breaker. Otherwise it writes to an
// in-process watermill gochannel, which tests subscribe to directly.
// Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pathwise/internal/config"
	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/metrics"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends events to a watermill backend.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
	topic     string
	backend   string
	// discarding is set when nothing consumes the in-process backend.
	discarding bool

	mu     sync.RWMutex
	closed bool
}

// New picks the NATS or in-process backend from configuration.
func New(cfg *config.EventsConfig) (*Publisher, error) {
	if cfg.Enabled {
		return NewNATSPublisher(cfg, logging.NewWatermillAdapter())
	}
	p := NewChannelPublisher(cfg.Topic, gochannel.NewGoChannel(gochannel.Config{}, logging.NewWatermillAdapter()))
	p.discarding = true
	logging.Warn().
		Str("topic", p.topic).
		Msg("EVENTS_ENABLED is false: personalization events are discarded")
	return p, nil
}

// NewChannelPublisher publishes to an in-process pubsub. Messages with no
// subscriber are dropped.
func NewChannelPublisher(topic string, pubsub *gochannel.GoChannel) *Publisher {
	return &Publisher{
		publisher: pubsub,
		topic:     topicOrDefault(topic),
		backend:   "gochannel",
	}
}

// NewNATSPublisher connects to JetStream. The connection retries in the
// background, so an unreachable server does not fail startup.
func NewNATSPublisher(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("pathwise"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: cfg.AutoProvision,
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	p := &Publisher{
		publisher: pub,
		topic:     topicOrDefault(cfg.Topic),
		backend:   "nats",
	}
	p.breaker = newBreaker("events-nats")
	return p, nil
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return DefaultTopic
	}
	return topic
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string { return p.topic }

// Backend names the transport: nats or gochannel.
func (p *Publisher) Backend() string { return p.backend }

// Discarding reports whether published events reach no consumer.
func (p *Publisher) Discarding() bool { return p.discarding }

// PublishServed encodes and publishes one event.
func (p *Publisher) PublishServed(ctx context.Context, ev *PersonalizationServed) (err error) {
	defer func() {
		if p.discarding && err == nil {
			metrics.RecordEventDiscarded(p.topic)
			return
		}
		metrics.RecordEventPublish(p.topic, err)
	}()

	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	data, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("learner_id", ev.LearnerID)
	msg.Metadata.Set("topic_id", ev.TopicID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	if p.backend == "nats" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	return p.publish(msg)
}

func (p *Publisher) publish(msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if p.breaker == nil {
		return p.publisher.Publish(p.topic, msg)
	}
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(p.topic, msg)
	})
	return err
}

// Close shuts the publisher down. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

func newBreaker(name string) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}
