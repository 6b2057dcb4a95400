package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"lifeos/internal/agent"
	"lifeos/internal/aggregate"
	"lifeos/internal/core"
	"lifeos/internal/session"
)

const barWidth = 20

// bar draws frac (0..1) as a fixed-width meter.
func bar(frac float64, width int) string {
	if math.IsNaN(frac) || frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
}

func writeActivity(b *strings.Builder, days []aggregate.DayBucket) {
	peak := 0
	for _, d := range days {
		if d.Count > peak {
			peak = d.Count
		}
	}
	for _, d := range days {
		frac := 0.0
		if peak > 0 {
			frac = float64(d.Count) / float64(peak)
		}
		fmt.Fprintf(b, "  %s %s  %s %d\n", labelStyle.Render(d.Label), labelStyle.Render(d.Date), bar(frac, barWidth/2), d.Count)
	}
}

func writeTags(b *strings.Builder, tags []aggregate.TagCount) {
	if len(tags) == 0 {
		b.WriteString(labelStyle.Render("  No tags yet"))
		b.WriteString("\n")
		return
	}
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, fmt.Sprintf("#%s (%d)", t.Tag, t.Count))
	}
	b.WriteString("  " + strings.Join(parts, "  ") + "\n")
}

func writeRadar(b *strings.Builder, axes []aggregate.RadarAxis) {
	width := 0
	for _, a := range axes {
		if len(a.Axis) > width {
			width = len(a.Axis)
		}
	}
	for _, a := range axes {
		fmt.Fprintf(b, "  %-*s %s %3.0f%%\n", width, a.Axis, bar(a.Value, barWidth), a.Value*100)
	}
}

// WriteDashboard renders the cross-domain overview.
func WriteDashboard(w io.Writer, d aggregate.Dashboard) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render("LifeOS"))
	b.WriteString("\n")
	if d.HasInsight {
		fmt.Fprintf(&b, "Overall score %s  %s\n", scoreStyle.Render(strconv.Itoa(d.OverallScore)), bar(float64(d.OverallScore)/100, barWidth))
		if d.Summary != "" {
			b.WriteString(d.Summary + "\n")
		}
	} else {
		b.WriteString(labelStyle.Render("No insights yet. Run `lifeos insights` to analyse your entries."))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Total entries"), d.TotalEntries)

	section(&b, "Domains")
	for _, c := range d.Cards {
		fmt.Fprintf(&b, "  %-14s %3d  %s  %-15s %s\n",
			c.Label, c.Score, bar(float64(c.Score)/100, barWidth/2),
			trendStyle(c.Trend).Render(c.Trend),
			labelStyle.Render(fmt.Sprintf("%d entries, last %s", c.EntryCount, c.LastEntry)))
	}

	section(&b, "Balance")
	writeRadar(&b, d.Radar)

	section(&b, "Last 7 days")
	writeActivity(&b, d.Activity)

	section(&b, "Top tags")
	writeTags(&b, d.TopTags)

	if len(d.Patterns) > 0 {
		section(&b, "Patterns")
		for _, p := range d.Patterns {
			b.WriteString("  • " + p + "\n")
		}
	}
	if len(d.Recommendations) > 0 {
		section(&b, "Recommendations")
		for _, r := range d.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s %s\n", r.Priority, titleStyle.Render(r.Title), labelStyle.Render("("+r.Domain+")"))
			if r.Description != "" {
				b.WriteString("      " + r.Description + "\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDomainView renders the detail screen of one domain.
func WriteDomainView(w io.Writer, v aggregate.DomainView) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(v.Label))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score %s  %s  %s\n", scoreStyle.Render(strconv.Itoa(v.Score)),
		trendStyle(v.Trend).Render(v.Trend), labelStyle.Render("last entry "+v.LastEntry))

	s := v.Sentiment
	fmt.Fprintf(&b, "Mood %s %d%%  %s %d%%  %s %d%%\n",
		successStyle.Render("positive"), s.PositivePct,
		warningStyle.Render("neutral"), s.NeutralPct,
		errorStyle.Render("negative"), s.NegativePct)

	if v.Budget != nil {
		section(&b, "Budget")
		fmt.Fprintf(&b, "  $%.2f of $%.0f  %s %d%%  %s\n", v.Budget.Spent, v.Budget.Limit,
			bar(float64(v.Budget.Percent)/100, barWidth), v.Budget.Percent, budgetStyle(v.Budget.Status))
	}
	if len(v.NetWorth) > 1 {
		last := v.NetWorth[len(v.NetWorth)-1]
		fmt.Fprintf(&b, "  Net worth trend %s over %d entries\n", scoreStyle.Render(fmt.Sprintf("%+.2f", last.Total)), len(v.NetWorth))
	}
	if len(v.Wellness) > 0 {
		section(&b, "Wellness")
		writeRadar(&b, v.Wellness)
	}
	if v.Goals != nil {
		section(&b, fmt.Sprintf("Goals (average %d%%)", v.Goals.Average))
		for _, g := range v.Goals.Goals {
			line := fmt.Sprintf("  %s %3d%%  %s", bar(float64(g.Progress)/100, barWidth/2), g.Progress, g.Content)
			if g.HasAbsolute {
				line += labelStyle.Render(fmt.Sprintf("  %s/%s %s", formatNumber(g.Current), formatNumber(g.Target), g.Unit))
			}
			b.WriteString(line + "\n")
		}
	}
	if v.Streak != nil {
		section(&b, "Streak")
		today := "not yet today"
		if v.Streak.ActiveToday {
			today = "logged today"
		}
		fmt.Fprintf(&b, "  current %d days, longest %d days, %s\n", v.Streak.Current, v.Streak.Longest, today)
	}

	section(&b, "Last 14 days")
	writeActivity(&b, v.Activity)

	section(&b, "Top tags")
	writeTags(&b, v.TopTags)

	section(&b, fmt.Sprintf("Entries (%d)", v.EntryCount))
	if len(v.Entries) == 0 {
		b.WriteString(labelStyle.Render("  Nothing logged yet"))
		b.WriteString("\n")
	}
	for _, e := range v.Entries {
		writeEntryLine(&b, e)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func budgetStyle(status string) string {
	switch status {
	case aggregate.BudgetOnTrack:
		return successStyle.Render(status)
	case aggregate.BudgetWatch:
		return warningStyle.Render(status)
	default:
		return errorStyle.Render(status)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sentimentMark(s core.Sentiment) string {
	switch s {
	case core.Positive:
		return successStyle.Render("+")
	case core.Negative:
		return errorStyle.Render("-")
	default:
		return warningStyle.Render("~")
	}
}

func writeEntryLine(b *strings.Builder, e core.DomainEntry) {
	ts := e.Timestamp
	if t, ok := e.Time(); ok {
		ts = t.Format("Jan 2 15:04")
	}
	fmt.Fprintf(b, "  %s %s %s\n", sentimentMark(e.Sentiment), labelStyle.Render(ts), e.Content)
	if len(e.Metrics) > 0 {
		parts := make([]string, 0, len(e.Metrics))
		for _, m := range e.Metrics {
			parts = append(parts, strings.TrimSpace(m.Name+": "+m.Value+" "+m.Unit))
		}
		b.WriteString(labelStyle.Render("      " + strings.Join(parts, ", ")))
		b.WriteString("\n")
	}
}

// WriteEntry renders a freshly logged entry.
func WriteEntry(w io.Writer, e core.DomainEntry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", successStyle.Render("Logged to"), titleStyle.Render(e.Domain.Label()))
	writeEntryLine(&b, e)
	if len(e.Tags) > 0 {
		b.WriteString("      #" + strings.Join(e.Tags, " #") + "\n")
	}
	if e.Summary != "" {
		b.WriteString(e.Summary + "\n")
	}
	for _, s := range e.Suggestions {
		b.WriteString("  → " + s + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteInsight renders a newly generated insight.
func WriteInsight(w io.Writer, in core.InsightData) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("Overall score"), scoreStyle.Render(strconv.Itoa(in.OverallScore)))
	if in.Summary != "" {
		b.WriteString(in.Summary + "\n")
	}
	section(&b, "Domain scores")
	for _, d := range core.Domains {
		score := in.DomainScores.Score(d)
		fmt.Fprintf(&b, "  %-14s %3d  %s\n", d.Label(), score, bar(float64(score)/100, barWidth))
	}
	if len(in.Patterns) > 0 {
		section(&b, "Patterns")
		for _, p := range in.Patterns {
			b.WriteString("  • " + p + "\n")
		}
	}
	if len(in.Recommendations) > 0 {
		section(&b, "Recommendations")
		for _, r := range in.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", r.Priority, r.Title, r.Description)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAnswer renders a query-mode answer.
func WriteAnswer(w io.Writer, a agent.Answer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", userStyle.Render("Q:"), a.Question)
	fmt.Fprintf(&b, "%s %s\n", assistantStyle.Render("A:"), a.Answer)
	for _, s := range a.Suggestions {
		b.WriteString("  → " + s + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteChat renders a transcript oldest first.
func WriteChat(w io.Writer, msgs []core.ChatMessage) error {
	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(labelStyle.Render("No conversation yet."))
		b.WriteString("\n")
	}
	for _, m := range msgs {
		writeMessage(&b, m)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMessage renders a single chat message.
func WriteMessage(w io.Writer, m core.ChatMessage) error {
	var b strings.Builder
	writeMessage(&b, m)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMessage(b *strings.Builder, m core.ChatMessage) {
	who := assistantStyle.Render("Coach")
	if m.Role == core.RoleUser {
		who = userStyle.Render("You")
	}
	fmt.Fprintf(b, "%s %s\n", who, m.Content)
	for _, a := range m.ActionItems {
		fmt.Fprintf(b, "  ☐ %s %s\n", a.Task, labelStyle.Render(strings.TrimSpace(a.Domain+" "+a.Timeframe)))
	}
	for _, f := range m.SuggestedFollowups {
		b.WriteString(labelStyle.Render("  ? " + f))
		b.WriteString("\n")
	}
}

// WriteChecklist renders the numbered checklist. Numbers start at 1.
func WriteChecklist(w io.Writer, items []core.ChecklistItem) error {
	var b strings.Builder
	done := 0
	for i, it := range items {
		box := "[ ]"
		if it.Done {
			box = successStyle.Render("[x]")
			done++
		}
		fmt.Fprintf(&b, "%2d. %s %s\n", i+1, box, it.Label)
	}
	fmt.Fprintf(&b, "%s\n", labelStyle.Render(fmt.Sprintf("%d of %d done", done, len(items))))
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteStatus renders the transient banner, if any.
func WriteStatus(w io.Writer, st session.Status) error {
	if st.Message == "" {
		return nil
	}
	style := successStyle
	if st.Kind == session.StatusError {
		style = errorStyle
	}
	_, err := io.WriteString(w, style.Render(st.Message)+"\n")
	return err
}
