package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON-encoded prize events to NATS subjects named
// after their topic (NOBEL_NATS_URL).
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the server at url, named so prize events are
// attributable in NATS monitoring.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("nobel-publisher"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber follows prize events for nobel watch.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects with unlimited reconnects. opts are applied
// after the defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.Name("nobel-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// subscription relays NATS messages into a bounded channel. Messages that
// arrive while the channel is full are dropped.
type subscription struct {
	sub *nats.Subscription
	ch  chan Message

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func (s *subscription) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- Message{Topic: msg.Subject, Data: msg.Data}:
	default:
	}
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		if s.sub != nil {
			_ = s.sub.Unsubscribe()
		}
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		// Pending messages are discarded so a receive after cancel
		// observes the closed channel.
		for range s.ch {
		}
	})
}

// Subscribe delivers messages whose subject matches topic (NATS wildcards
// such as "prizes.>" apply). The returned cancel func unsubscribes and
// closes the channel.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	sub := &subscription{ch: make(chan Message, 64)}

	var err error
	if sub.sub, err = s.conn.Subscribe(topic, sub.deliver); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	// The interest must reach the server before Subscribe returns, or
	// messages published right after on another connection are lost.
	if err := s.conn.Flush(); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}
	return sub.ch, sub.cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
