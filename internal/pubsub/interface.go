package pubsub

// PubSubClient publishes and decodes league events.
type PubSubClient interface {
	SendMessage(topic string, data any) error
	ProcessMessage(data []byte, returnValue any) error
	// Close releases topic handles and the underlying connection.
	Close()
}
