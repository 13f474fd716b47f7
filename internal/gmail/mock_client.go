package gmail

import (
	"context"
	"sync"

	"business-admin/internal/model"
)

// MockGmailClient is a mock implementation of GmailClient for testing
type MockGmailClient struct {
	ListInboxFunc  func(ctx context.Context, user *model.User, maxResults int64) ([]*model.Email, error)
	MarkAsReadFunc func(ctx context.Context, user *model.User, messageID string) error

	mu       sync.Mutex
	markedAs []string
}

func NewMockGmailClient() *MockGmailClient {
	return &MockGmailClient{}
}

func (m *MockGmailClient) ListInbox(ctx context.Context, user *model.User, maxResults int64) ([]*model.Email, error) {
	if m.ListInboxFunc != nil {
		return m.ListInboxFunc(ctx, user, maxResults)
	}
	return []*model.Email{}, nil
}

func (m *MockGmailClient) MarkAsRead(ctx context.Context, user *model.User, messageID string) error {
	m.mu.Lock()
	m.markedAs = append(m.markedAs, messageID)
	m.mu.Unlock()

	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, user, messageID)
	}
	return nil
}

// MarkedAsRead returns the message IDs passed to MarkAsRead so far.
func (m *MockGmailClient) MarkedAsRead() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.markedAs...)
}
