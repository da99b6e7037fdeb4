package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

var _ PubSubClient = (*Mock)(nil)

// SentMessage captures one published message for assertions.
type SentMessage struct {
	Topic string
	Data  any
}

// Mock records published messages instead of sending them.
type Mock struct {
	mu       sync.Mutex
	messages []SentMessage
	closed   bool

	// SendErr, when set, is returned by every SendMessage call.
	SendErr error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMessage(topic string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.messages = append(m.messages, SentMessage{Topic: topic, Data: data})
	return nil
}

func (m *Mock) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}

func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Messages returns everything published so far.
func (m *Mock) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.messages...)
}

// noop is the client used when no project is configured.
type noop struct{}

// NewNoop returns a client that drops messages.
func NewNoop() PubSubClient { return noop{} }

func (noop) SendMessage(string, any) error { return nil }

func (noop) Close() {}

func (noop) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}
