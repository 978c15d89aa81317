package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/gateway"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/ports"
)

// GatewayFactory creates message gateways based on configuration
type GatewayFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	handler core.MessageHandler
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, handler core.MessageHandler) *GatewayFactory {
	return &GatewayFactory{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// CreateMessageGateway creates a message gateway based on the configuration
func (f *GatewayFactory) CreateMessageGateway() (ports.MessageGateway, error) {
	gatewayType := f.cfg.GetString("server.gateway_type")

	switch gatewayType {
	case "tcp":
		return gateway.NewTCPGateway(
			f.handler,
			f.cfg.GetString("server.listen_address"),
			f.logger,
		), nil
	case "stdin":
		return gateway.NewStdinGateway(f.handler, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}
