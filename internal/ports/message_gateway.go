package ports

// MessageGateway defines the interface for inbound message transports
type MessageGateway interface {
	// Start starts accepting message events
	Start() error

	// Stop stops the gateway and releases its resources
	Stop() error
}
