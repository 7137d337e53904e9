package entities

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
)

// Format renders entities as a fixed-width table. An empty list yields the
// localized "no entities" message.
func (a *Aggregator) Format(entities []domain.Entity) string {
	return FormatTable(entities, a.localizer)
}

// FormatTable is Format for callers without an Aggregator.
func FormatTable(entities []domain.Entity, l ports.Localizer) string {
	if l == nil {
		l = i18n.Default()
	}
	if len(entities) == 0 {
		return l.T("ner.no_entities")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(l.T("ner.header"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-30s %-15s %-10s\n", l.T("ner.entity"), l.T("ner.type"), l.T("ner.frequency"))
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteString("\n")

	for _, e := range entities {
		fmt.Fprintf(&b, "%-30s %-15s %-10d\n", displayText(e.Text), e.Type, e.Frequency)
	}
	return b.String()
}

func displayText(text string) string {
	if utf8.RuneCountInString(text) <= maxEntityDisplay {
		return text
	}
	return string([]rune(text)[:maxEntityDisplay-2]) + ".."
}
