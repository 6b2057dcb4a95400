package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"lifeos/internal/core"
	"lifeos/internal/session"
)

// Exporter writes a full session snapshot in one format.
type Exporter interface {
	Export(s session.Snapshot, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}

// Encode writes any view as pretty JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: text, json, yaml)", format)
	}
}

type JSONExporter struct{}

func (e *JSONExporter) Export(s session.Snapshot, w io.Writer) error {
	return Encode(w, "json", s)
}

func (e *JSONExporter) Extension() string {
	return "json"
}

type YAMLExporter struct{}

func (e *YAMLExporter) Export(s session.Snapshot, w io.Writer) error {
	return Encode(w, "yaml", s)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}

// MarkdownExporter writes a readable journal: entries grouped by domain,
// then the insight, checklist and conversation.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(s session.Snapshot, w io.Writer) error {
	var b strings.Builder
	b.WriteString("# LifeOS journal\n")

	for _, d := range core.Domains {
		entries := s.Entries.Entries(d)
		fmt.Fprintf(&b, "\n## %s\n\n", d.Label())
		if len(entries) == 0 {
			b.WriteString("_No entries yet._\n")
			continue
		}
		for _, en := range entries {
			fmt.Fprintf(&b, "- **%s** %s", en.Timestamp, en.Content)
			if len(en.Tags) > 0 {
				b.WriteString(" `#" + strings.Join(en.Tags, "` `#") + "`")
			}
			fmt.Fprintf(&b, " (%s)\n", en.Sentiment)
		}
	}

	if s.Insight != nil {
		fmt.Fprintf(&b, "\n## Insight\n\nOverall score: **%d**\n", s.Insight.OverallScore)
		if s.Insight.Summary != "" {
			b.WriteString("\n" + s.Insight.Summary + "\n")
		}
		for _, p := range s.Insight.Patterns {
			b.WriteString("\n- " + p)
		}
		if len(s.Insight.Patterns) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Checklist\n\n")
	for _, it := range s.Checklist {
		box := " "
		if it.Done {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", box, it.Label)
	}

	if len(s.Chat) > 0 {
		b.WriteString("\n## Conversation\n\n")
		for _, m := range s.Chat {
			who := "Coach"
			if m.Role == core.RoleUser {
				who = "You"
			}
			fmt.Fprintf(&b, "**%s:** %s\n\n", who, m.Content)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
