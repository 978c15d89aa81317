package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// Event lines larger than this are malformed or hostile and are dropped.
const maxEventBytes = 1 << 20

// TCPGateway accepts newline-delimited JSON message events over TCP and
// feeds them to the handler.
type TCPGateway struct {
	handler    core.MessageHandler
	logger     *zap.Logger
	listenAddr string

	listener net.Listener
	wg       sync.WaitGroup
	closed   chan struct{}
}

// NewTCPGateway creates a new TCP message gateway
func NewTCPGateway(handler core.MessageHandler, listenAddr string, logger *zap.Logger) *TCPGateway {
	return &TCPGateway{
		handler:    handler,
		logger:     logger,
		listenAddr: listenAddr,
		closed:     make(chan struct{}),
	}
}

// Start starts listening for gateway connections
func (g *TCPGateway) Start() error {
	listener, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		return err
	}
	g.listener = listener

	g.logger.Info("Message gateway starting", zap.String("address", g.listenAddr))

	g.wg.Add(1)
	go g.acceptLoop()
	return nil
}

// Stop stops the gateway and waits for in-flight connections to finish
func (g *TCPGateway) Stop() error {
	close(g.closed)
	var err error
	if g.listener != nil {
		err = g.listener.Close()
	}
	g.wg.Wait()
	return err
}

func (g *TCPGateway) acceptLoop() {
	defer g.wg.Done()

	for {
		conn, err := g.listener.Accept()
		if err != nil {
			select {
			case <-g.closed:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			g.logger.Warn("Failed to accept connection", zap.Error(err))
			continue
		}

		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			g.serveConn(conn)
		}()
	}
}

func (g *TCPGateway) serveConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	g.logger.Debug("Gateway connection opened", zap.String("remote", remote))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxEventBytes)

	for scanner.Scan() {
		select {
		case <-g.closed:
			return
		default:
		}
		g.handleLine(scanner.Bytes(), remote)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		g.logger.Warn("Gateway connection error",
			zap.String("remote", remote), zap.Error(err))
	}
	g.logger.Debug("Gateway connection closed", zap.String("remote", remote))
}

func (g *TCPGateway) handleLine(line []byte, remote string) {
	if len(line) == 0 {
		return
	}

	var ev wireEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		g.logger.Warn("Dropping malformed gateway event",
			zap.String("remote", remote), zap.Error(err))
		return
	}
	if !shouldProcess(&ev) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := g.handler.HandleMessage(ctx, ev.Message.toCore()); err != nil {
		g.logger.Error("Failed to handle message",
			zap.String("message", ev.Message.ID), zap.Error(err))
	}
}
