// Package notify relays search lifecycle events to Redis pub/sub so UIs and
// other services can follow long-running searches.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/job-hunter/internal/domain"
	jobdomain "github.com/honeycarbs/job-hunter/internal/domain/job"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

// DefaultChannel is the pub/sub channel events are published on
const DefaultChannel = "jobhunter:events"

const (
	publishTimeout = 2 * time.Second
	// progress and status events beyond this backlog are dropped
	eventBuffer = 64
)

// EventType discriminates Event payloads
type EventType string

const (
	EventProgress        EventType = "search.progress"
	EventStatus          EventType = "search.status"
	EventSessionFinished EventType = "session.finished"
)

// Event is the JSON message published for every notification
type Event struct {
	Type     EventType       `json:"type"`
	At       time.Time       `json:"at"`
	Progress float64         `json:"progress,omitempty"`
	Message  string          `json:"message,omitempty"`
	Session  *SessionPayload `json:"session,omitempty"`
}

// SessionPayload is the published view of a finished session
type SessionPayload struct {
	ID       string               `json:"id"`
	Keywords string               `json:"keywords"`
	Status   domain.SessionStatus `json:"status"`
	Sources  []string             `json:"sources"`
	Counts   domain.SessionCounts `json:"counts"`
	Errors   []string             `json:"errors,omitempty"`
	Duration string               `json:"duration"`
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Publisher publishes search events; it is a job.SessionSink and its
// Progress and Status methods fit Service.OnProgress and Service.OnStatus.
type Publisher struct {
	rdb     publisher
	channel string
	logger  *logging.Logger
	clock   func() time.Time

	events chan Event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

var _ jobdomain.SessionSink = (*Publisher)(nil)

// NewPublisher builds a Publisher and starts its sender goroutine; an empty
// channel uses DefaultChannel. Call Close to stop it.
func NewPublisher(rdb *redis.Client, channel string, logger *logging.Logger) *Publisher {
	return newPublisher(rdb, channel, logger)
}

func newPublisher(rdb publisher, channel string, logger *logging.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = logging.Nop()
	}
	p := &Publisher{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With("component", "notify"),
		clock:   time.Now,
		events:  make(chan Event, eventBuffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// Close stops the sender after publishing what is already queued
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.quit)
		<-p.done
	})
}

func (p *Publisher) loop() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			p.send(ev)
		case <-p.quit:
			for {
				select {
				case ev := <-p.events:
					p.send(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) send(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.publish(ctx, ev); err != nil {
		p.logger.Debug("publish failed", "type", ev.Type, "err", err)
	}
}

// SessionFinished publishes the terminal session
func (p *Publisher) SessionFinished(ctx context.Context, s domain.Session) error {
	return p.publish(ctx, p.sessionEvent(s))
}

// Progress queues a progress percentage and returns at once
func (p *Publisher) Progress(percent float64) {
	p.fireAndForget(Event{Type: EventProgress, At: p.clock().UTC(), Progress: percent})
}

// Status queues a status line and returns at once
func (p *Publisher) Status(msg string) {
	p.fireAndForget(Event{Type: EventStatus, At: p.clock().UTC(), Message: msg})
}

func (p *Publisher) sessionEvent(s domain.Session) Event {
	return Event{
		Type: EventSessionFinished,
		At:   p.clock().UTC(),
		Session: &SessionPayload{
			ID:       s.ID.String(),
			Keywords: s.Request.Keywords,
			Status:   s.Status,
			Sources:  s.Sources,
			Counts:   s.Counts,
			Errors:   s.Errors,
			Duration: s.Duration().String(),
		},
	}
}

func (p *Publisher) fireAndForget(ev Event) {
	select {
	case <-p.quit:
		return
	default:
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Debug("event dropped, publisher backlog full", "type", ev.Type)
	}
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: encode %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish %s: %w", ev.Type, err)
	}
	return nil
}
