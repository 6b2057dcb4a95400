package session

import (
	"fmt"

	"lifeos/internal/aggregate"
	"lifeos/internal/core"
)

// Snapshot is a read-only copy of the visible session state. Slices and
// maps in it must not be modified.
type Snapshot struct {
	Entries    core.EntryStore      `json:"entries" yaml:"entries"`
	Insight    *core.InsightData    `json:"insight,omitempty" yaml:"insight,omitempty"`
	Chat       []core.ChatMessage   `json:"chat" yaml:"chat"`
	Checklist  []core.ChecklistItem `json:"checklist" yaml:"checklist"`
	SampleMode bool                 `json:"sample_mode" yaml:"sample_mode"`
	Revision   uint64               `json:"revision" yaml:"revision"`
}

// visible returns the data views should show. Must hold s.mu.
func (s *Session) visible() (core.EntryStore, *core.InsightData, []core.ChatMessage) {
	if s.state.sample {
		return s.sample.Entries, &s.sample.Insight, s.sample.Chat
	}
	return s.state.entries, s.state.insight, s.state.chat
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, insight, chat := s.visible()
	return Snapshot{
		Entries:    entries,
		Insight:    insight,
		Chat:       chat,
		Checklist:  append([]core.ChecklistItem(nil), s.state.checklist...),
		SampleMode: s.state.sample,
		Revision:   s.state.revision,
	}
}

// viewKey identifies one derived view. The revision covers every entry and
// insight change; the day keeps date-bucketed views from going stale.
func (s *Session) viewKey(kind string) string {
	day := s.now().UTC().Format("2006-01-02")
	return fmt.Sprintf("%s|%d|%t|%s", kind, s.state.revision, s.state.sample, day)
}

// Dashboard returns the cross-domain view, recomputed only when the state
// revision or the day changes.
func (s *Session) Dashboard() aggregate.Dashboard {
	s.mu.Lock()
	entries, insight, _ := s.visible()
	key := s.viewKey("dashboard")
	now := s.now()
	s.mu.Unlock()

	return s.dashboards.GetOrCompute(key, func() aggregate.Dashboard {
		return aggregate.BuildDashboard(entries, insight, now, s.loc)
	})
}

// DomainView returns the detail view of d.
func (s *Session) DomainView(d core.Domain) (aggregate.DomainView, error) {
	if !d.Valid() {
		return aggregate.DomainView{}, core.ErrUnknownDomain
	}
	s.mu.Lock()
	entries, insight, _ := s.visible()
	key := s.viewKey("domain:" + string(d))
	now := s.now()
	s.mu.Unlock()

	return s.views.GetOrCompute(key, func() aggregate.DomainView {
		return aggregate.BuildDomainView(d, entries.Entries(d), insight, now, s.loc)
	}), nil
}

func (s *Session) Chat() []core.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, chat := s.visible()
	return chat
}

func (s *Session) Checklist() []core.ChecklistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ChecklistItem(nil), s.state.checklist...)
}
