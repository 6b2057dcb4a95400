// Package session owns the in-memory state of one LifeOS user session and
// every transition on it. Persisted storage only seeds the state on Load and
// mirrors it after each mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lifeos/internal/agent"
	"lifeos/internal/aggregate"
	"lifeos/internal/cache"
	"lifeos/internal/core"
	"lifeos/internal/log"
	"lifeos/internal/storage"
)

var (
	// ErrBusy rejects a call while another of the same capability is running.
	ErrBusy          = errors.New("a request of this kind is already in progress")
	ErrSampleMode    = errors.New("sample data is read-only")
	ErrEmptyInput    = errors.New("input is empty")
	ErrNoSuchItem    = errors.New("no such checklist item")
	ErrNotConfigured = errors.New("agent caller is not configured")
)

// EventPublisher receives logged entries. Implementations may be remote;
// their failures never fail the session operation.
type EventPublisher interface {
	PublishEntryLogged(ctx context.Context, e core.DomainEntry) error
}

type Options struct {
	Caller    agent.Caller
	AgentIDs  agent.IDs
	Store     storage.BlobStore
	Events    EventPublisher
	Logger    *log.Logger
	Now       func() time.Time
	Location  *time.Location
	StatusTTL time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// state is the single record every transition reads and replaces.
type state struct {
	entries     core.EntryStore
	insight     *core.InsightData
	chat        []core.ChatMessage
	checklist   []core.ChecklistItem
	sample      bool
	loading     map[agent.Capability]bool
	activeAgent string
	status      Status
	revision    uint64
}

type Session struct {
	mu    sync.Mutex
	state state

	caller    agent.Caller
	ids       agent.IDs
	store     storage.BlobStore
	events    EventPublisher
	logger    *log.Logger
	now       func() time.Time
	loc       *time.Location
	statusTTL time.Duration
	sample    core.Sample

	dashboards cache.Cache[aggregate.Dashboard]
	views      cache.Cache[aggregate.DomainView]
}

// New creates a session with empty state. Call Load to seed it from storage.
func New(opts Options) (*Session, error) {
	sample, err := core.LoadSample()
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = 4 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.AgentIDs == (agent.IDs{}) {
		opts.AgentIDs = agent.DefaultIDs()
	}

	return &Session{
		state: state{
			entries:   core.NewEntryStore(),
			chat:      []core.ChatMessage{},
			checklist: core.DefaultChecklist(),
			loading:   map[agent.Capability]bool{},
		},
		caller:     opts.Caller,
		ids:        opts.AgentIDs,
		store:      opts.Store,
		events:     opts.Events,
		logger:     opts.Logger.WithComponent(log.ComponentSession),
		now:        opts.Now,
		loc:        opts.Location,
		statusTTL:  opts.StatusTTL,
		sample:     sample,
		dashboards: cache.NewLRUCache[aggregate.Dashboard](opts.CacheSize, opts.CacheTTL),
		views:      cache.NewLRUCache[aggregate.DomainView](opts.CacheSize, opts.CacheTTL),
	}, nil
}

// Caches exposes the view caches so a cache.Manager can sweep them.
func (s *Session) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboards, s.views}
}

// Load replaces the current state with what the store holds.
func (s *Session) Load(ctx context.Context) error {
	p, err := loadPersisted(ctx, s.store, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.entries = p.entries
	s.state.insight = p.insight
	s.state.chat = p.chat
	s.state.checklist = p.checklist
	s.state.revision++
	s.logger.Debug("Session loaded", log.FieldEntryCount, p.entries.Count(), log.FieldRevision, s.state.revision)
	return nil
}

// begin marks capability c as loading. Must hold s.mu.
func (s *Session) begin(c agent.Capability, mutates bool) error {
	if s.caller == nil {
		return ErrNotConfigured
	}
	if mutates && s.state.sample {
		return ErrSampleMode
	}
	if s.state.loading[c] {
		return ErrBusy
	}
	s.state.loading[c] = true
	s.state.activeAgent = s.ids.For(c)
	return nil
}

// end clears the loading flag of c. Must hold s.mu.
func (s *Session) end(c agent.Capability) {
	delete(s.state.loading, c)
	if s.state.activeAgent == s.ids.For(c) {
		s.state.activeAgent = ""
		for other := range s.state.loading {
			s.state.activeAgent = s.ids.For(other)
			break
		}
	}
}

func (s *Session) setStatus(kind StatusKind, msg string) {
	s.state.status = Status{Kind: kind, Message: msg, ExpiresAt: s.now().Add(s.statusTTL)}
}

// failureStatus picks the message for a failed agent call.
func failureStatus(err error, unparseable, failed string) string {
	if errors.Is(err, agent.ErrUnparseable) {
		return unparseable
	}
	return failed
}

func (s *Session) logCallFailure(op string, c agent.Capability, err error) {
	kind := log.ErrorTypeTransport
	if errors.Is(err, agent.ErrUnparseable) {
		kind = log.ErrorTypeParse
	}
	s.logger.Warn("Agent call failed",
		log.NewFields().WithOperation(op).WithAgent(string(c), s.ids.For(c)).
			WithErrorType(kind).WithError(err).ToSlice()...)
}

// GenerateInsights asks the insight agent to analyse every domain and
// replaces the insight on success.
func (s *Session) GenerateInsights(ctx context.Context) (core.InsightData, error) {
	s.mu.Lock()
	if err := s.begin(agent.Insight, true); err != nil {
		s.mu.Unlock()
		return core.InsightData{}, err
	}
	prompt := agent.InsightPrompt(s.state.entries)
	s.mu.Unlock()

	data, err := agent.Ask(ctx, s.caller, s.ids, agent.Insight, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(agent.Insight)
	if err != nil {
		s.logCallFailure(log.OpInsight, agent.Insight, err)
		s.setStatus(StatusError, failureStatus(err, MsgInsightUnparseable, MsgInsightFailed))
		return core.InsightData{}, err
	}

	insight := agent.InsightFrom(data)
	s.state.insight = &insight
	s.state.revision++
	s.setStatus(StatusSuccess, MsgInsightOK)
	writeBlob(ctx, s.store, storage.KeyInsight, insight, s.logger)
	s.logger.Info("Insights generated", "overall_score", insight.OverallScore, log.FieldRevision, s.state.revision)
	return insight, nil
}

// LogEntry sends free text to the tracker and files the structured entry
// at the top of domain d.
func (s *Session) LogEntry(ctx context.Context, d core.Domain, text string) (core.DomainEntry, error) {
	text = strings.TrimSpace(text)
	if !d.Valid() {
		return core.DomainEntry{}, core.ErrUnknownDomain
	}
	if text == "" {
		return core.DomainEntry{}, ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.begin(agent.Tracker, true); err != nil {
		s.mu.Unlock()
		return core.DomainEntry{}, err
	}
	s.mu.Unlock()

	data, err := agent.Ask(ctx, s.caller, s.ids, agent.Tracker, agent.TrackerPrompt(d, text))

	s.mu.Lock()
	s.end(agent.Tracker)
	if err != nil {
		s.logCallFailure(log.OpLogEntry, agent.Tracker, err)
		s.setStatus(StatusError, failureStatus(err, MsgEntryUnparseable, MsgEntryFailed))
		s.mu.Unlock()
		return core.DomainEntry{}, err
	}

	entry := agent.EntryFrom(data, d, text, s.now())
	s.state.entries = s.state.entries.WithPrepended(d, entry)
	s.state.revision++
	s.setStatus(StatusSuccess, MsgEntryOK)
	writeBlob(ctx, s.store, storage.KeyEntries, s.state.entries, s.logger)
	s.logger.Info("Entry logged", log.FieldDomain, string(d), log.FieldRevision, s.state.revision)
	s.mu.Unlock()

	if s.events != nil {
		if err := s.events.PublishEntryLogged(ctx, entry); err != nil {
			s.logger.Warn("Failed to publish entry event",
				log.NewFields().WithOperation(log.OpPublish).WithDomain(string(d)).WithError(err).ToSlice()...)
		}
	}
	return entry, nil
}

// AskDomain asks the tracker a question about domain d. It shares the
// tracker's loading flag but changes no state besides the status banner.
func (s *Session) AskDomain(ctx context.Context, d core.Domain, question string) (agent.Answer, error) {
	question = strings.TrimSpace(question)
	if !d.Valid() {
		return agent.Answer{}, core.ErrUnknownDomain
	}
	if question == "" {
		return agent.Answer{}, ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.begin(agent.Tracker, false); err != nil {
		s.mu.Unlock()
		return agent.Answer{}, err
	}
	s.mu.Unlock()

	data, err := agent.Ask(ctx, s.caller, s.ids, agent.Tracker, agent.QueryPrompt(d, question))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(agent.Tracker)
	if err != nil {
		s.logCallFailure(log.OpQuery, agent.Tracker, err)
		s.setStatus(StatusError, failureStatus(err, MsgQueryUnparseable, MsgQueryFailed))
		return agent.Answer{}, err
	}
	return agent.AnswerFrom(data, question), nil
}

// SendChat appends the user's message and the coach's reply. A failed call
// still appends an assistant message explaining the failure, and the
// underlying error is returned alongside it.
func (s *Session) SendChat(ctx context.Context, message string) (core.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return core.ChatMessage{}, ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.begin(agent.Coach, true); err != nil {
		s.mu.Unlock()
		return core.ChatMessage{}, err
	}
	user := core.ChatMessage{Role: core.RoleUser, Content: message, Timestamp: core.FormatTimestamp(s.now())}
	s.state.chat = appendMessage(s.state.chat, user)
	writeBlob(ctx, s.store, storage.KeyChat, s.state.chat, s.logger)
	s.mu.Unlock()

	data, err := agent.Ask(ctx, s.caller, s.ids, agent.Coach, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(agent.Coach)

	var reply core.ChatMessage
	if err != nil {
		s.logCallFailure(log.OpChat, agent.Coach, err)
		reply = core.ChatMessage{
			Role:      core.RoleAssistant,
			Content:   failureStatus(err, MsgChatUnparseable, MsgChatFailed),
			Timestamp: core.FormatTimestamp(s.now()),
		}
	} else {
		reply = agent.ChatReplyFrom(data, s.now())
	}
	s.state.chat = appendMessage(s.state.chat, reply)
	writeBlob(ctx, s.store, storage.KeyChat, s.state.chat, s.logger)
	return reply, err
}

// appendMessage returns a new transcript; the old slice is never shared.
func appendMessage(chat []core.ChatMessage, m core.ChatMessage) []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(chat)+1)
	out = append(out, chat...)
	return append(out, m)
}

// SetSampleMode switches the views between the user's data and the
// read-only sample set.
func (s *Session) SetSampleMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.sample == on {
		return
	}
	s.state.sample = on
	s.state.revision++
	s.logger.Debug("Sample mode changed", log.FieldSampleMode, on)
}

func (s *Session) SampleMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.sample
}

// ToggleChecklistItem flips item i and persists the checklist.
func (s *Session) ToggleChecklistItem(ctx context.Context, i int) (core.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.state.checklist) {
		return core.ChecklistItem{}, fmt.Errorf("%w: %d", ErrNoSuchItem, i)
	}
	items := append([]core.ChecklistItem(nil), s.state.checklist...)
	items[i].Done = !items[i].Done
	s.state.checklist = items
	writeBlob(ctx, s.store, storage.KeyChecklist, items, s.logger)
	return items[i], nil
}

// ResetChecklist restores the default unchecked list.
func (s *Session) ResetChecklist(ctx context.Context) []core.ChecklistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.checklist = core.DefaultChecklist()
	writeBlob(ctx, s.store, storage.KeyChecklist, s.state.checklist, s.logger)
	return append([]core.ChecklistItem(nil), s.state.checklist...)
}

// Status returns the banner if it has not expired yet.
func (s *Session) Status() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.status.visible(s.now()) {
		return s.state.status, true
	}
	return Status{}, false
}

func (s *Session) DismissStatus() {
	s.mu.Lock()
	s.state.status = Status{}
	s.mu.Unlock()
}

// Loading reports whether a call of capability c is outstanding.
func (s *Session) Loading(c agent.Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.loading[c]
}

// ActiveAgent is the id of an agent with an outstanding call, if any.
func (s *Session) ActiveAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.activeAgent
}
