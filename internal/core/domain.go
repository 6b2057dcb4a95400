package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Health        Domain = "health"
	Finance       Domain = "finance"
	Career        Domain = "career"
	Relationships Domain = "relationships"
	Habits        Domain = "habits"
	Goals         Domain = "goals"
)

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

type (
	Domain    string
	Sentiment string

	Metric struct {
		Name  string `json:"name" yaml:"name"`
		Value string `json:"value" yaml:"value"`
		Unit  string `json:"unit" yaml:"unit"`
	}

	// DomainEntry is a single logged item as structured by the tracker agent.
	// Timestamp is kept verbatim; use Time to interpret it.
	DomainEntry struct {
		Domain      Domain    `json:"domain" yaml:"domain"`
		Content     string    `json:"content" yaml:"content"`
		Tags        []string  `json:"tags" yaml:"tags"`
		Metrics     []Metric  `json:"metrics" yaml:"metrics"`
		Sentiment   Sentiment `json:"sentiment" yaml:"sentiment"`
		Timestamp   string    `json:"timestamp" yaml:"timestamp"`
		Summary     string    `json:"summary,omitempty" yaml:"summary,omitempty"`
		Suggestions []string  `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	}

	// EntryStore maps every domain to its entries, newest first.
	EntryStore map[Domain][]DomainEntry
)

var (
	ErrUnknownDomain = errors.New("unknown domain")
	ErrEmptyContent  = errors.New("empty content")
)

// Domains lists the six domains in display order.
var Domains = []Domain{Health, Finance, Career, Relationships, Habits, Goals}

var domainLabels = map[Domain]string{
	Health:        "Health",
	Finance:       "Finance",
	Career:        "Career",
	Relationships: "Relationships",
	Habits:        "Habits",
	Goals:         "Goals",
}

// ParseDomain accepts a domain key in any case.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrUnknownDomain
	}
	return d, nil
}

func (d Domain) Valid() bool {
	_, ok := domainLabels[d]
	return ok
}

// Label returns the display name, or the raw key for unknown domains.
func (d Domain) Label() string {
	if l, ok := domainLabels[d]; ok {
		return l
	}
	return string(d)
}

func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Neutral, Negative:
		return true
	}
	return false
}

func (e DomainEntry) Validate() error {
	if !e.Domain.Valid() {
		return ErrUnknownDomain
	}
	if strings.TrimSpace(e.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Time parses the entry timestamp.
func (e DomainEntry) Time() (time.Time, bool) {
	return ParseTimestamp(e.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO forms seen in stored
// history. Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way entries store it: UTC with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// NewEntryStore returns a store with an empty list for every domain.
func NewEntryStore() EntryStore {
	s := make(EntryStore, len(Domains))
	for _, d := range Domains {
		s[d] = []DomainEntry{}
	}
	return s
}

// Entries returns the entries of a domain, never nil.
func (s EntryStore) Entries(d Domain) []DomainEntry {
	if list, ok := s[d]; ok && list != nil {
		return list
	}
	return []DomainEntry{}
}

// All concatenates every domain's entries in domain order.
func (s EntryStore) All() []DomainEntry {
	var all []DomainEntry
	for _, d := range Domains {
		all = append(all, s[d]...)
	}
	return all
}

func (s EntryStore) Count() int {
	n := 0
	for _, d := range Domains {
		n += len(s[d])
	}
	return n
}

// Clone copies the map and the per-domain slices.
func (s EntryStore) Clone() EntryStore {
	out := NewEntryStore()
	for _, d := range Domains {
		out[d] = append([]DomainEntry{}, s[d]...)
	}
	return out
}

// WithPrepended returns a new store with e placed first in domain d.
func (s EntryStore) WithPrepended(d Domain, e DomainEntry) EntryStore {
	out := s.Clone()
	out[d] = append([]DomainEntry{e}, out[d]...)
	return out
}
