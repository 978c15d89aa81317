package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// StdinGateway reads newline-delimited JSON message events from standard
// input, for local runs and piped replays.
type StdinGateway struct {
	handler core.MessageHandler
	logger  *zap.Logger
	input   io.Reader
	done    chan struct{}
}

// NewStdinGateway creates a gateway reading from stdin
func NewStdinGateway(handler core.MessageHandler, logger *zap.Logger) *StdinGateway {
	return &StdinGateway{
		handler: handler,
		logger:  logger,
		input:   os.Stdin,
		done:    make(chan struct{}),
	}
}

// Start consumes events until the input is exhausted
func (g *StdinGateway) Start() error {
	go func() {
		defer close(g.done)

		scanner := bufio.NewScanner(g.input)
		scanner.Buffer(make([]byte, 64*1024), maxEventBytes)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var ev wireEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				g.logger.Warn("Dropping malformed event", zap.Error(err))
				continue
			}
			if !shouldProcess(&ev) {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := g.handler.HandleMessage(ctx, ev.Message.toCore()); err != nil {
				g.logger.Error("Failed to handle message",
					zap.String("message", ev.Message.ID), zap.Error(err))
			}
			cancel()
		}
		if err := scanner.Err(); err != nil {
			g.logger.Error("Failed to read input", zap.Error(err))
		}
	}()
	return nil
}

// Stop is a no-op; the gateway stops when its input is exhausted
func (g *StdinGateway) Stop() error {
	return nil
}

// Wait blocks until the input has been fully consumed
func (g *StdinGateway) Wait() {
	<-g.done
}
