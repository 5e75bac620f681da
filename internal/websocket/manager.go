package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

type Options struct {
	MaxConnPerUser int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
}

// Manager owns the set of live connections, indexed by user.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	done           chan struct{}
	maxConnPerUser int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	log            zerolog.Logger
}

func NewManager(opts Options, log zerolog.Logger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		done:           make(chan struct{}),
		maxConnPerUser: opts.MaxConnPerUser,
		maxMessageSize: opts.MaxMessageSize,
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		log:            log.With().Str("component", "websocket").Logger(),
	}
}

// Run serves register, unregister and inbound messages until ctx ends,
// then closes every connection.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)

		case <-ctx.Done():
			close(m.done)
			m.closeAll()
			return
		}
	}
}

// Done is closed once Run has stopped. Senders on Register, Unregister and
// HandleMessage select on it so they never block on a stopped hub.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		m.log.Warn().Str("user_id", client.UserID).Msg("max connections reached")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	m.log.Debug().Str("client_id", client.ID).Str("user_id", client.UserID).Msg("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	delete(m.clients, client.ID)
	delete(m.userIndex[client.UserID], client.ID)
	if len(m.userIndex[client.UserID]) == 0 {
		delete(m.userIndex, client.UserID)
	}

	close(client.Send)
	m.log.Debug().Str("client_id", client.ID).Msg("client unregistered")
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for _, client := range m.clients {
		m.removeLocked(client)
	}
}

// Clients only ever send pings; anything else gets an error frame back.
func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.reply(clientMsg.Client, TypeError, &ErrorPayload{Error: "invalid message"})
		return
	}

	switch msg.Type {
	case TypePing:
		m.reply(clientMsg.Client, TypePong, nil)
	default:
		m.reply(clientMsg.Client, TypeError, &ErrorPayload{Error: "unsupported message type"})
	}
}

func (m *Manager) reply(client *Client, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return
	}
	m.SendToClient(client.ID, msg)
}

// BroadcastToUser queues message on every connection of userID. A client
// whose buffer is full is dropped rather than blocking the caller.
func (m *Manager) BroadcastToUser(userID string, message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for clientID := range m.userIndex[userID] {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			m.log.Warn().Str("client_id", clientID).Msg("send buffer full, closing connection")
			m.removeLocked(client)
		}
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.log.Warn().Str("client_id", clientID).Msg("send buffer full")
	}

	return nil
}

func (m *Manager) GetUserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.userIndex[userID])
}
