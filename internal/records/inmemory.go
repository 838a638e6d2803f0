package records

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu            sync.RWMutex
	clients       map[int64]Client
	sessions      []Session
	nextClientID  int64
	nextSessionID int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[int64]Client)}
}

func (s *InMemoryStore) CreateClient(_ context.Context, fields ClientFields) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextClientID++
	c := Client{ID: s.nextClientID, ClientFields: cloneClientFields(fields)}
	s.clients[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) ListClients(_ context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) GetClient(_ context.Context, id int64) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) UpdateClient(_ context.Context, id int64, patch ClientPatch) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	if patch.FirstName != nil {
		c.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		c.LastName = *patch.LastName
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		c.PhoneNumber = *patch.PhoneNumber
	}
	if patch.OtherDetails != nil {
		v := *patch.OtherDetails
		c.OtherDetails = &v
	}
	s.clients[id] = c
	return c, nil
}

func (s *InMemoryStore) ReplaceClient(_ context.Context, id int64, fields ClientFields) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return Client{}, ErrNotFound
	}
	c := Client{ID: id, ClientFields: cloneClientFields(fields)}
	s.clients[id] = c
	return c, nil
}

func (s *InMemoryStore) DeleteClient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return ErrNotFound
	}
	for _, sess := range s.sessions {
		if sess.ClientID == id {
			return ErrClientInUse
		}
	}
	delete(s.clients, id)
	return nil
}

func (s *InMemoryStore) RecordSession(_ context.Context, fields SessionFields) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[fields.ClientID]; !ok {
		return Session{}, ErrUnknownClient
	}
	s.nextSessionID++
	if fields.Comments != nil {
		v := *fields.Comments
		fields.Comments = &v
	}
	sess := Session{ID: s.nextSessionID, SessionFields: fields}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

func (s *InMemoryStore) ListSessions(_ context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *InMemoryStore) ClientHours(_ context.Context, clientID int64, from, to time.Time) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		hours float64
		found bool
	)
	for _, sess := range s.sessions {
		if sess.ClientID != clientID || sess.StartedAt.Before(from) || sess.StartedAt.After(to) {
			continue
		}
		hours += sess.Duration.Hours()
		found = true
	}
	return hours, found, nil
}

func (s *InMemoryStore) HoursSummary(_ context.Context) ([]ClientHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byClient := make(map[int64]*ClientHours)
	for _, sess := range s.sessions {
		c, ok := s.clients[sess.ClientID]
		if !ok {
			continue
		}
		total := byClient[c.ID]
		if total == nil {
			total = &ClientHours{ClientID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
			byClient[c.ID] = total
		}
		total.Hours += sess.Duration.Hours()
	}
	out := make([]ClientHours, 0, len(byClient))
	for _, t := range byClient {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out, nil
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }

func cloneClientFields(f ClientFields) ClientFields {
	if f.OtherDetails != nil {
		v := *f.OtherDetails
		f.OtherDetails = &v
	}
	return f
}
