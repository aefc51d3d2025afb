package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"ColdMailer/internal/domain"
)

type modelReply struct {
	out string
	err error
}

// sequenceModel replays replies in order and repeats the last one.
type sequenceModel struct {
	mu      sync.Mutex
	replies []modelReply
	prompts []string
}

func (m *sequenceModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	if len(m.replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	return m.replies[idx].out, m.replies[idx].err
}

func (m *sequenceModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

type memStore struct {
	mu        sync.Mutex
	records   []domain.OutreachRecord
	existsErr error
	insertErr error
}

func (s *memStore) Exists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.existsErr != nil {
		return false, s.existsErr
	}
	for _, rec := range s.records {
		if rec.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(_ context.Context, record domain.OutreachRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return s.insertErr
	}
	s.records = append(s.records, record)
	return nil
}

func (s *memStore) List(_ context.Context) ([]domain.OutreachRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutreachRecord(nil), s.records...), nil
}

type fakeMailer struct {
	mu     sync.Mutex
	status int
	body   string
	err    error
	sent   []domain.Email
}

func (m *fakeMailer) Send(_ context.Context, email domain.Email) (domain.SendReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return domain.SendReceipt{}, m.err
	}
	m.sent = append(m.sent, email)
	status := m.status
	if status == 0 {
		status = http.StatusCreated
	}
	return domain.SendReceipt{StatusCode: status, Body: m.body}, nil
}
