package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/metrics"
	"github.com/iliyamo/filmorate/internal/model"
)

var (
	// ErrBufferFull is returned by Publish when the event was dropped
	// because the delivery buffer is full.
	ErrBufferFull = errors.New("feed publish buffer full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("feed publisher closed")
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a channel on a fresh broker connection. The returned
// closer releases both.
type dialFunc func(url string) (channel, func(), error)

// amqpDialer bounds the TCP connect and the AMQP handshake by timeout.
func amqpDialer(timeout time.Duration) dialFunc {
	return func(url string) (channel, func(), error) {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Dial:      amqp.DefaultDial(timeout),
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("channel open: %w", err)
		}
		return ch, func() { _ = ch.Close(); _ = conn.Close() }, nil
	}
}

// Publisher sends feed events to FeedQueueName from a background goroutine.
// Publish only queues the message; when the buffer is full the event is
// dropped and counted. The broker channel is opened lazily and dropped
// after any failure so the next delivery reconnects. Deliveries go through
// a circuit breaker so an unreachable broker costs one fast failure per
// event while open.
type Publisher struct {
	url     string
	breaker *gobreaker.CircuitBreaker[struct{}]
	dial    dialFunc
	timeout time.Duration

	events    chan amqp.Publishing
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by run
	ch      channel
	release func()
}

// NewPublisher starts a Publisher for the broker at url.
func NewPublisher(url string, breaker *gobreaker.CircuitBreaker[struct{}], cfg config.PublisherConfig) *Publisher {
	return newPublisher(url, breaker, amqpDialer(cfg.DialTimeout), cfg)
}

func newPublisher(url string, breaker *gobreaker.CircuitBreaker[struct{}], dial dialFunc, cfg config.PublisherConfig) *Publisher {
	if cfg.Buffer < 1 {
		cfg.Buffer = 1
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	p := &Publisher{
		url:     url,
		breaker: breaker,
		dial:    dial,
		timeout: cfg.PublishTimeout,
		events:  make(chan amqp.Publishing, cfg.Buffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish implements service.Publisher. It never waits on the broker.
func (p *Publisher) Publish(_ context.Context, e model.FeedEvent) error {
	select {
	case <-p.quit:
		return ErrPublisherClosed
	default:
	}

	body, err := json.Marshal(NewFeedEventMessage(e))
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.UnixMilli(e.Timestamp).UTC(),
		Type:         string(e.EventType) + "." + string(e.Operation),
		Body:         body,
	}

	select {
	case p.events <- msg:
		return nil
	default:
		metrics.FeedPublished.WithLabelValues("dropped").Inc()
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	defer p.reset()
	for {
		select {
		case msg := <-p.events:
			p.deliver(msg)
		case <-p.quit:
			// flush what was queued before Close
			for {
				select {
				case msg := <-p.events:
					p.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(msg amqp.Publishing) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.send(ctx, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.FeedPublished.WithLabelValues("breaker_open").Inc()
		logging.Debug().Str("message_id", msg.MessageId).Msg("feed publish skipped, breaker open")
	case err != nil:
		metrics.FeedPublished.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Str("message_id", msg.MessageId).Str("type", msg.Type).Msg("feed publish failed")
	default:
		metrics.FeedPublished.WithLabelValues("ok").Inc()
	}
}

func (p *Publisher) send(ctx context.Context, msg amqp.Publishing) error {
	if p.ch == nil {
		ch, release, err := p.dial(p.url)
		if err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(FeedQueueName, true, false, false, false, nil); err != nil {
			release()
			return fmt.Errorf("queue declare: %w", err)
		}
		p.ch, p.release = ch, release
	}

	if err := p.ch.PublishWithContext(ctx, "", FeedQueueName, false, false, msg); err != nil {
		logging.Debug().Err(err).Msg("rabbitmq publish failed, dropping channel")
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *Publisher) reset() {
	if p.release != nil {
		p.release()
	}
	p.ch, p.release = nil, nil
}

// Close stops accepting events, delivers the ones already queued and
// releases the broker connection.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() { close(p.quit) })
	<-p.done
}
