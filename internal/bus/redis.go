package bus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBridge delivers signals locally and mirrors them over a Redis channel
// so other portal processes refresh too. Remote delivery is best effort.
type RedisBridge struct {
	*Local
	client  *redis.Client
	channel string
	origin  string
	timeout time.Duration
}

// NewRedisBridge wraps local with a Redis pub/sub channel.
func NewRedisBridge(local *Local, client *redis.Client, channel string) *RedisBridge {
	if channel == "" {
		channel = "campuslink:signals"
	}
	return &RedisBridge{
		Local:   local,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		timeout: 2 * time.Second,
	}
}

// Publish delivers t locally, then forwards it to the channel.
func (b *RedisBridge) Publish(t Topic) {
	b.Local.Publish(t)
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, serialize(b.origin, t)).Err(); err != nil {
		glog.Warningf("bus: forward %s to %s: %v", t, b.channel, err)
	}
}

// Start subscribes to the channel and relays foreign signals until ctx ends.
// It returns once the subscription is confirmed.
func (b *RedisBridge) Start(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				origin, topic, err := deserialize(msg.Payload)
				if err != nil {
					glog.V(1).Infof("bus: drop malformed signal %q", msg.Payload)
					continue
				}
				if origin == b.origin {
					continue
				}
				glog.V(2).Infof("bus: relay %s from %s", topic, origin)
				b.Local.deliver(topic, "remote")
			}
		}
	}()
	return nil
}

// serialize stores a signal as origin|topic.
func serialize(origin string, t Topic) string {
	return origin + "|" + string(t)
}

func deserialize(s string) (string, Topic, error) {
	origin, topic, ok := strings.Cut(s, "|")
	if !ok || topic == "" {
		return "", "", errors.New("bus: malformed signal")
	}
	return origin, Topic(topic), nil
}
