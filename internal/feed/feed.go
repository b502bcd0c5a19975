// Package feed fans attendance events out over Redis pub/sub so every
// client of a user sees check-ins and check-outs as they happen.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/balkashynov/punch/internal/attendance"
)

// DefaultPrefix is the channel prefix used when none is configured.
const DefaultPrefix = "punch:sessions"

// Channel returns the per-user channel name.
func Channel(prefix, userID string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":" + userID
}

// Connect creates a client and checks the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher implements attendance.Publisher on Redis.
type Publisher struct {
	client redisPublisher
	prefix string
}

var _ attendance.Publisher = (*Publisher)(nil)

func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Publish sends ev to the owner's channel.
func (p *Publisher) Publish(ctx context.Context, ev attendance.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(p.prefix, ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	return nil
}

// DecodeEvent parses a message payload.
func DecodeEvent(payload string) (attendance.Event, error) {
	var ev attendance.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return attendance.Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if ev.Type != attendance.EventCheckedIn && ev.Type != attendance.EventCheckedOut {
		return attendance.Event{}, fmt.Errorf("decoding event: unknown type %q", ev.Type)
	}
	return ev, nil
}

// Subscriber streams a user's events.
type Subscriber struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
}

func NewSubscriber(rdb *redis.Client, prefix string, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{rdb: rdb, prefix: prefix, logger: logger}
}

// Subscribe calls handle for every event on userID's channel until ctx is
// cancelled. Malformed messages are logged and skipped.
func (s *Subscriber) Subscribe(ctx context.Context, userID string, handle func(attendance.Event)) error {
	channel := Channel(s.prefix, userID)
	pubsub := s.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Wait for confirmation that the subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", channel, err)
	}
	s.logger.Debug("subscribed", zap.String("channel", channel))

	return consume(ctx, pubsub.Channel(), handle, s.logger)
}

func consume(ctx context.Context, messages <-chan *redis.Message, handle func(attendance.Event), logger *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg == nil {
				continue
			}
			ev, err := DecodeEvent(msg.Payload)
			if err != nil {
				logger.Warn("skipping feed message", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			handle(ev)
		}
	}
}
