package sse

import (
	"encoding/json"
	"sync"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
)

const (
	EventNewEmail     = "new_email"
	EventEmailSummary = "email_summary"
	EventReminders    = "reminders_sent"

	clientBuffer = 16
)

// Event is the JSON payload written on every SSE "data:" line.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time int64       `json:"time"`
}

// SSEManager fans events out to the open event streams, grouped by user.
type SSEManager struct {
	clients    map[string]map[chan []byte]struct{}
	clientsMux sync.RWMutex
	closed     bool
	logger     *logger.Logger
}

func NewSSEManager(logger *logger.Logger) *SSEManager {
	return &SSEManager{
		clients: make(map[string]map[chan []byte]struct{}),
		logger:  logger,
	}
}

// AddClient registers a stream for userID and returns its channel.
func (s *SSEManager) AddClient(userID string) chan []byte {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	channel := make(chan []byte, clientBuffer)
	if s.closed {
		close(channel)
		return channel
	}
	if s.clients[userID] == nil {
		s.clients[userID] = make(map[chan []byte]struct{})
	}
	s.clients[userID][channel] = struct{}{}

	s.logger.Info("Added SSE client for user:", userID, "total clients:", len(s.clients[userID]))
	return channel
}

func (s *SSEManager) RemoveClient(userID string, channel chan []byte) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	userClients, exists := s.clients[userID]
	if !exists {
		return
	}
	if _, ok := userClients[channel]; !ok {
		return
	}
	delete(userClients, channel)
	close(channel)
	if len(userClients) == 0 {
		delete(s.clients, userID)
	}
	s.logger.Info("Removed SSE client for user:", userID, "remaining clients:", len(userClients))
}

func (s *SSEManager) BroadcastEmailToUser(userID string, email *model.Email) {
	s.BroadcastToUser(userID, EventNewEmail, email)
}

func (s *SSEManager) BroadcastToUser(userID string, eventType string, data interface{}) {
	payload, ok := s.encode(eventType, data)
	if !ok {
		return
	}

	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	s.sendLocked(userID, payload)
}

// Broadcast sends the event to every connected stream.
func (s *SSEManager) Broadcast(eventType string, data interface{}) {
	payload, ok := s.encode(eventType, data)
	if !ok {
		return
	}

	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	for userID := range s.clients {
		s.sendLocked(userID, payload)
	}
}

func (s *SSEManager) encode(eventType string, data interface{}) ([]byte, bool) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Time: time.Now().Unix()})
	if err != nil {
		s.logger.Error("Failed to marshal SSE event:", eventType, err)
		return nil, false
	}
	return payload, true
}

// sendLocked never blocks: a stream whose buffer is full misses the event.
func (s *SSEManager) sendLocked(userID string, payload []byte) {
	for channel := range s.clients[userID] {
		select {
		case channel <- payload:
		default:
			s.logger.Warn("SSE buffer full, dropping event for user:", userID)
		}
	}
}

// Close ends every stream. Later AddClient calls get a closed channel.
func (s *SSEManager) Close() {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	for userID, userClients := range s.clients {
		for channel := range userClients {
			close(channel)
		}
		delete(s.clients, userID)
	}
	s.closed = true
}

func (s *SSEManager) GetUserConnectionCount(userID string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	return len(s.clients[userID])
}

func (s *SSEManager) HasUserConnection(userID string) bool {
	return s.GetUserConnectionCount(userID) > 0
}
