// Package thread implements the append-only Task-Thread log (spec §3,
// §4.2). One thread exists per long-running user project; the dispatcher
// attaches each request either to an existing thread (by project match) or
// creates one. Grounded on the teacher's internal/model.ConversationMessage
// shape for per-entry fields.
package thread

import (
	"context"
	"sync"
	"time"

	"github.com/kadai-ai/kadai/internal/errs"
)

// Ref is a reference attached to a ThreadEntry — typically a MemoryItem id
// or a KnowledgeGraph entity id.
type Ref struct {
	Kind string // "memory_item" | "entity"
	ID   string
}

// EntryKind distinguishes what produced a ThreadEntry, so a transcript
// reads coherently (supplemented field, not named in spec.md's ThreadEntry).
type EntryKind string

const (
	EntryUserRequest EntryKind = "user_request"
	EntrySkillResult EntryKind = "skill_result"
	EntrySystemNote  EntryKind = "system_note"
)

type Entry struct {
	Timestamp time.Time
	Kind      EntryKind
	Text      string
	Refs      []Ref
}

type Thread struct {
	ID        string
	Project   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Entries   []Entry
}

type IDGen func() string

// Store is the Thread Store contract (spec §4.2).
type Store interface {
	Create(ctx context.Context, project, title string) (*Thread, error)
	Get(ctx context.Context, threadID string) (*Thread, error)
	AddEntry(ctx context.Context, threadID string, kind EntryKind, text string, refs []Ref) (Entry, error)
	FindByProject(ctx context.Context, project string) (*Thread, error)
	List(ctx context.Context, limit int) ([]*Thread, error)
}

type store struct {
	mu        sync.RWMutex
	idGen     IDGen
	byID      map[string]*Thread
	byProject map[string]string
	order     []string
}

func New(idGen IDGen) Store {
	return &store{
		idGen:     idGen,
		byID:      make(map[string]*Thread),
		byProject: make(map[string]string),
	}
}

func (s *store) Create(_ context.Context, project, title string) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := &Thread{
		ID:        s.idGen(),
		Project:   project,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[t.ID] = t
	s.byProject[project] = t.ID
	s.order = append(s.order, t.ID)
	return t, nil
}

func (s *store) Get(_ context.Context, threadID string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[threadID]
	if !ok {
		return nil, errs.NotFound
	}
	cp := *t
	return &cp, nil
}

func (s *store) AddEntry(_ context.Context, threadID string, kind EntryKind, text string, refs []Ref) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[threadID]
	if !ok {
		return Entry{}, errs.NotFound
	}
	e := Entry{Timestamp: time.Now(), Kind: kind, Text: text, Refs: refs}
	t.Entries = append(t.Entries, e)
	t.UpdatedAt = e.Timestamp
	return e, nil
}

func (s *store) FindByProject(_ context.Context, project string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProject[project]
	if !ok {
		return nil, errs.NotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *store) List(_ context.Context, limit int) ([]*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Thread, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.byID[s.order[i]]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
