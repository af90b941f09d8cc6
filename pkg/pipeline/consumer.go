package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MessageSource pulls a single message from a subscription, acknowledging it
// before returning. It is satisfied by *pubsub.Client.
type MessageSource interface {
	Pull(ctx context.Context, subscription string, block bool) ([]byte, error)
}

// ConsumerConfig holds configuration for a Consumer.
type ConsumerConfig struct {
	Subscription string
	// BufferSize is the capacity of the Messages channel. Defaults to 16.
	BufferSize int
	// RetryDelay is the pause after a failed pull before the loop tries
	// again. It paces the loop; it is not a delivery-retry mechanism.
	// Defaults to 2s.
	RetryDelay time.Duration
}

// Consumer runs a background long-poll loop against one subscription and
// emits payloads on a channel. Because the source acknowledges before
// returning, delivery to the channel is at most once: a payload that cannot
// be handed over before shutdown is lost, not redelivered.
type Consumer struct {
	source     MessageSource
	cfg        ConsumerConfig
	logger     zerolog.Logger
	outputChan chan []byte
	doneChan   chan struct{}
	stopOnce   sync.Once
	cancelPull context.CancelFunc
	wg         sync.WaitGroup
}

// NewConsumer creates a new Consumer.
func NewConsumer(source MessageSource, cfg ConsumerConfig, logger zerolog.Logger) (*Consumer, error) {
	if source == nil {
		return nil, fmt.Errorf("message source cannot be nil")
	}
	if cfg.Subscription == "" {
		return nil, fmt.Errorf("subscription cannot be empty")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Consumer{
		source:     source,
		cfg:        cfg,
		logger:     logger.With().Str("component", "Consumer").Str("subscription", cfg.Subscription).Logger(),
		outputChan: make(chan []byte, cfg.BufferSize),
		doneChan:   make(chan struct{}),
	}, nil
}

// Messages returns the channel payloads are delivered on. It is closed when
// the consumer stops.
func (c *Consumer) Messages() <-chan []byte { return c.outputChan }

// Start launches the pull loop. The loop stops when ctx is cancelled or Stop
// is called.
func (c *Consumer) Start(ctx context.Context) error {
	pullCtx, cancel := context.WithCancel(ctx)
	c.cancelPull = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.outputChan)
		defer close(c.doneChan)
		c.logger.Info().Msg("Pull loop started.")
		for {
			if pullCtx.Err() != nil {
				c.logger.Info().Msg("Pull loop stopped.")
				return
			}
			payload, err := c.source.Pull(pullCtx, c.cfg.Subscription, true)
			if err != nil {
				if pullCtx.Err() != nil {
					c.logger.Info().Msg("Pull loop stopped.")
					return
				}
				c.logger.Error().Err(err).Msg("Pull failed, pausing before next attempt")
				select {
				case <-time.After(c.cfg.RetryDelay):
				case <-pullCtx.Done():
				}
				continue
			}
			if payload == nil {
				// The broker answered the long poll without a message.
				continue
			}
			select {
			case c.outputChan <- payload:
			case <-pullCtx.Done():
				c.logger.Warn().Msg("Consumer stopping with an undelivered payload; the message was already acknowledged.")
				return
			}
		}
	}()
	return nil
}

// Stop cancels the pull loop and waits for it to finish.
func (c *Consumer) Stop() error {
	c.stopOnce.Do(func() {
		c.logger.Info().Msg("Stopping consumer...")
		if c.cancelPull != nil {
			c.cancelPull()
		}
		c.wg.Wait()
		c.logger.Info().Msg("Consumer stopped.")
	})
	return nil
}

// Done returns a channel that is closed when the pull loop has fully stopped.
func (c *Consumer) Done() <-chan struct{} { return c.doneChan }
