package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lifeos/internal/agent"
	"lifeos/internal/core"
	"lifeos/internal/storage"
)

type callerFunc func(ctx context.Context, message, agentID string) (agent.Result, error)

func (f callerFunc) Call(ctx context.Context, message, agentID string) (agent.Result, error) {
	return f(ctx, message, agentID)
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []core.DomainEntry
	err     error
}

func (p *recordingPublisher) PublishEntryLogged(_ context.Context, e core.DomainEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	session *Session
	store   *storage.MemoryStore
	events  *recordingPublisher
	clock   *testClock
}

func newFixture(t *testing.T, caller agent.Caller) fixture {
	t.Helper()
	f := fixture{
		store:  storage.NewMemoryStore(),
		events: &recordingPublisher{},
		clock:  &testClock{t: time.Date(2025, 2, 24, 12, 0, 0, 0, time.UTC)},
	}
	if caller == nil {
		caller = agent.NewMockCaller(agent.DefaultIDs())
	}
	s, err := New(Options{
		Caller:   caller,
		Store:    f.store,
		Events:   f.events,
		Now:      f.clock.Now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.session = s
	return f
}

func failingCaller(err error) agent.Caller {
	return callerFunc(func(context.Context, string, string) (agent.Result, error) {
		return agent.Result{}, err
	})
}

func unparseableCaller() agent.Caller {
	return callerFunc(func(context.Context, string, string) (agent.Result, error) {
		return agent.Result{Success: false}, nil
	})
}

func TestLogEntry_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.session.LogEntry(ctx, core.Health, "ran 5k")
	if err != nil {
		t.Fatalf("LogEntry: %v", err)
	}
	if _, err := f.session.LogEntry(ctx, core.Health, "slept 8h"); err != nil {
		t.Fatalf("LogEntry: %v", err)
	}

	snap := f.session.Snapshot()
	got := snap.Entries[core.Health]
	if len(got) != 2 || got[0].Content != "slept 8h" || got[1].Content != first.Content {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if first.Domain != core.Health || first.Timestamp != "2025-02-24T12:00:00.000Z" {
		t.Fatalf("unexpected entry %+v", first)
	}
	if st, ok := f.session.Status(); !ok || st.Message != MsgEntryOK || st.Kind != StatusSuccess {
		t.Fatalf("unexpected status %+v %v", st, ok)
	}
	if f.session.Loading(agent.Tracker) || f.session.ActiveAgent() != "" {
		t.Fatal("loading flag not cleared")
	}

	raw, found, _ := f.store.Get(ctx, storage.KeyEntries)
	if !found || !strings.Contains(raw, "slept 8h") {
		t.Fatalf("entries not persisted: %q", raw)
	}
	if len(f.events.entries) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(f.events.entries))
	}
}

func TestLogEntry_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.session.LogEntry(ctx, "sleep", "x"); !errors.Is(err, core.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
	if _, err := f.session.LogEntry(ctx, core.Health, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestLogEntry_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.events.err = errors.New("broker down")

	if _, err := f.session.LogEntry(context.Background(), core.Career, "shipped"); err != nil {
		t.Fatalf("publish failure must not fail the operation: %v", err)
	}
	if f.session.Snapshot().Entries.Count() != 1 {
		t.Fatal("entry should be stored despite publish failure")
	}
}

func TestAgentFailures(t *testing.T) {
	transport := failingCaller(errors.New("connection refused"))

	tests := []struct {
		name       string
		caller     agent.Caller
		run        func(s *Session) error
		wantStatus string
	}{
		{"insight transport", transport, func(s *Session) error { _, err := s.GenerateInsights(context.Background()); return err }, MsgInsightFailed},
		{"insight unparseable", unparseableCaller(), func(s *Session) error { _, err := s.GenerateInsights(context.Background()); return err }, MsgInsightUnparseable},
		{"tracker transport", transport, func(s *Session) error { _, err := s.LogEntry(context.Background(), core.Health, "run"); return err }, MsgEntryFailed},
		{"tracker unparseable", unparseableCaller(), func(s *Session) error { _, err := s.LogEntry(context.Background(), core.Health, "run"); return err }, MsgEntryUnparseable},
		{"query transport", transport, func(s *Session) error { _, err := s.AskDomain(context.Background(), core.Goals, "why?"); return err }, MsgQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.caller)
			if err := tt.run(f.session); err == nil {
				t.Fatal("expected an error")
			}
			st, ok := f.session.Status()
			if !ok || st.Kind != StatusError || st.Message != tt.wantStatus {
				t.Fatalf("unexpected status %+v", st)
			}
			snap := f.session.Snapshot()
			if snap.Entries.Count() != 0 || snap.Insight != nil {
				t.Fatal("failed call must not change state")
			}
			for _, c := range []agent.Capability{agent.Insight, agent.Tracker, agent.Coach} {
				if f.session.Loading(c) {
					t.Fatalf("%s still loading", c)
				}
			}
		})
	}
}

func TestGenerateInsights(t *testing.T) {
	var prompt string
	mock := agent.NewMockCaller(agent.DefaultIDs())
	caller := callerFunc(func(ctx context.Context, msg, id string) (agent.Result, error) {
		if id == agent.DefaultInsightID {
			prompt = msg
		}
		return mock.Call(ctx, msg, id)
	})
	f := newFixture(t, caller)
	ctx := context.Background()

	if _, err := f.session.LogEntry(ctx, core.Finance, "saved 200"); err != nil {
		t.Fatal(err)
	}
	insight, err := f.session.GenerateInsights(ctx)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if insight.OverallScore != 60 {
		t.Fatalf("unexpected insight %+v", insight)
	}
	if !strings.Contains(prompt, "finance:\n- saved 200") {
		t.Fatalf("prompt should include entries: %q", prompt)
	}
	if d := f.session.Dashboard(); d.OverallScore != 60 || !d.HasInsight {
		t.Fatalf("dashboard not updated: %+v", d)
	}
	if raw, found, _ := f.store.Get(ctx, storage.KeyInsight); !found || !strings.Contains(raw, `"overall_score":60`) {
		t.Fatalf("insight not persisted: %q", raw)
	}
}

func TestMutualExclusionPerCapability(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	mock := agent.NewMockCaller(agent.DefaultIDs())
	caller := callerFunc(func(ctx context.Context, msg, id string) (agent.Result, error) {
		if id == agent.DefaultInsightID {
			close(started)
			<-release
		}
		return mock.Call(ctx, msg, id)
	})
	f := newFixture(t, caller)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.session.GenerateInsights(ctx)
		done <- err
	}()
	<-started

	if !f.session.Loading(agent.Insight) || f.session.ActiveAgent() != agent.DefaultInsightID {
		t.Fatal("insight should be loading")
	}
	if _, err := f.session.GenerateInsights(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := f.session.SendChat(ctx, "hello"); err != nil {
		t.Fatalf("chat must not be blocked by insight: %v", err)
	}
	if _, err := f.session.LogEntry(ctx, core.Habits, "meditated"); err != nil {
		t.Fatalf("tracker must not be blocked by insight: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first insight call failed: %v", err)
	}
	if f.session.Loading(agent.Insight) {
		t.Fatal("flag not cleared")
	}
}

func TestSendChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, nil)
		reply, err := f.session.SendChat(context.Background(), "what now?")
		if err != nil {
			t.Fatalf("SendChat: %v", err)
		}
		chat := f.session.Chat()
		if len(chat) != 2 || chat[0].Role != core.RoleUser || chat[1].Content != reply.Content {
			t.Fatalf("unexpected transcript %+v", chat)
		}
		if len(reply.ActionItems) != 1 {
			t.Fatalf("expected action items, got %+v", reply)
		}
	})

	cases := []struct {
		name   string
		caller agent.Caller
		want   string
	}{
		{"transport failure", failingCaller(errors.New("timeout")), MsgChatFailed},
		{"unparseable", unparseableCaller(), MsgChatUnparseable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.caller)
			reply, err := f.session.SendChat(context.Background(), "hi")
			if err == nil {
				t.Fatal("expected the underlying error")
			}
			if reply.Role != core.RoleAssistant || reply.Content != tc.want {
				t.Fatalf("unexpected fallback reply %+v", reply)
			}
			if chat := f.session.Chat(); len(chat) != 2 {
				t.Fatalf("expected user message and fallback, got %d", len(chat))
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, nil)
		if _, err := f.session.SendChat(context.Background(), " "); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})
}

func TestAskDomain(t *testing.T) {
	f := newFixture(t, nil)
	a, err := f.session.AskDomain(context.Background(), core.Health, "am I sleeping enough?")
	if err != nil {
		t.Fatalf("AskDomain: %v", err)
	}
	if a.Question != "am I sleeping enough?" || a.Answer == "" {
		t.Fatalf("unexpected answer %+v", a)
	}
	if f.session.Snapshot().Entries.Count() != 0 {
		t.Fatal("query mode must not log entries")
	}
}

func TestSampleMode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.session.SetSampleMode(true)

	if d := f.session.Dashboard(); d.OverallScore != 72 || d.TotalEntries != 5 {
		t.Fatalf("expected sample dashboard, got %+v", d)
	}
	if len(f.session.Chat()) != 2 {
		t.Fatal("expected sample chat")
	}
	if _, err := f.session.LogEntry(ctx, core.Health, "run"); !errors.Is(err, ErrSampleMode) {
		t.Fatalf("expected ErrSampleMode, got %v", err)
	}
	if _, err := f.session.GenerateInsights(ctx); !errors.Is(err, ErrSampleMode) {
		t.Fatalf("expected ErrSampleMode, got %v", err)
	}
	if _, err := f.session.SendChat(ctx, "hi"); !errors.Is(err, ErrSampleMode) {
		t.Fatalf("expected ErrSampleMode, got %v", err)
	}
	if _, found, _ := f.store.Get(ctx, storage.KeyEntries); found {
		t.Fatal("sample data must not be persisted")
	}

	f.session.SetSampleMode(false)
	if d := f.session.Dashboard(); d.OverallScore != 0 || d.TotalEntries != 0 {
		t.Fatalf("expected empty dashboard, got %+v", d)
	}
}

func TestStatusExpires(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.session.LogEntry(context.Background(), core.Goals, "Progress 40"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.session.Status(); !ok {
		t.Fatal("status should be visible")
	}
	f.clock.Advance(4 * time.Second)
	if st, ok := f.session.Status(); ok {
		t.Fatalf("status should have expired: %+v", st)
	}
}

func TestDismissStatus(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.session.LogEntry(context.Background(), core.Habits, "Meditated"); err != nil {
		t.Fatal(err)
	}
	f.session.DismissStatus()
	if st, ok := f.session.Status(); ok {
		t.Fatalf("status should be gone after dismiss: %+v", st)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		f := newFixture(t, nil)
		if _, err := f.session.LogEntry(ctx, core.Relationships, "called mom"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.session.ToggleChecklistItem(ctx, 2); err != nil {
			t.Fatal(err)
		}
		if _, err := f.session.SendChat(ctx, "hello"); err != nil {
			t.Fatal(err)
		}

		next, err := New(Options{Caller: agent.NewMockCaller(agent.DefaultIDs()), Store: f.store})
		if err != nil {
			t.Fatal(err)
		}
		if err := next.Load(ctx); err != nil {
			t.Fatalf("Load: %v", err)
		}
		snap := next.Snapshot()
		if len(snap.Entries[core.Relationships]) != 1 || snap.Entries[core.Relationships][0].Content != "called mom" {
			t.Fatalf("entries not restored: %+v", snap.Entries)
		}
		if !snap.Checklist[2].Done || len(snap.Chat) != 2 {
			t.Fatalf("checklist/chat not restored: %+v %+v", snap.Checklist, snap.Chat)
		}
		if snap.Insight != nil {
			t.Fatal("insight was never generated")
		}
	})

	malformed := []struct {
		name  string
		blobs map[string]string
	}{
		{"invalid json", map[string]string{
			storage.KeyEntries: "{not json", storage.KeyInsight: "{not json",
			storage.KeyChat: "{not json", storage.KeyChecklist: "{not json",
		}},
		{"wrong shapes", map[string]string{
			storage.KeyEntries: "[]", storage.KeyInsight: `"text"`,
			storage.KeyChat: "{}", storage.KeyChecklist: "null",
		}},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			for k, v := range tc.blobs {
				if err := store.Set(ctx, k, v); err != nil {
					t.Fatal(err)
				}
			}
			s, err := New(Options{Store: store})
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Load(ctx); err != nil {
				t.Fatalf("Load must not fail on corrupt data: %v", err)
			}
			snap := s.Snapshot()
			if snap.Entries.Count() != 0 || len(snap.Entries) != len(core.Domains) {
				t.Fatalf("expected empty entry store, got %+v", snap.Entries)
			}
			if snap.Insight != nil || len(snap.Chat) != 0 || len(snap.Checklist) != len(core.DefaultChecklist()) {
				t.Fatalf("expected defaults, got %+v", snap)
			}
		})
	}
}

func TestChecklist(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	item, err := f.session.ToggleChecklistItem(ctx, 0)
	if err != nil || !item.Done {
		t.Fatalf("toggle: %+v %v", item, err)
	}
	if _, err := f.session.ToggleChecklistItem(ctx, 99); !errors.Is(err, ErrNoSuchItem) {
		t.Fatalf("expected ErrNoSuchItem, got %v", err)
	}

	raw, _, _ := f.store.Get(ctx, storage.KeyChecklist)
	var stored []core.ChecklistItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || !stored[0].Done {
		t.Fatalf("checklist not persisted: %q", raw)
	}

	if items := f.session.ResetChecklist(ctx); items[0].Done {
		t.Fatal("reset should uncheck everything")
	}
}

func TestViewsAreMemoized(t *testing.T) {
	f := newFixture(t, nil)

	f.session.Dashboard()
	f.session.Dashboard()
	if st := f.session.dashboards.Stats(); st.Misses != 1 || st.Hits != 1 {
		t.Fatalf("expected one computation, got %+v", st)
	}

	if _, err := f.session.LogEntry(context.Background(), core.Health, "walk"); err != nil {
		t.Fatal(err)
	}
	if d := f.session.Dashboard(); d.TotalEntries != 1 {
		t.Fatalf("dashboard must reflect the new entry, got %d", d.TotalEntries)
	}
	if st := f.session.dashboards.Stats(); st.Misses != 2 {
		t.Fatalf("expected recompute after mutation, got %+v", st)
	}

	v, err := f.session.DomainView(core.Health)
	if err != nil || v.EntryCount != 1 || len(v.Wellness) != 5 {
		t.Fatalf("unexpected domain view %+v %v", v, err)
	}
	if _, err := f.session.DomainView("pets"); !errors.Is(err, core.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GenerateInsights(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
