package domain

import (
	"fmt"
	"strings"
)

// SourceKind identifies one of the record sources the agent extracts.
type SourceKind string

const (
	// SourceContacts is the address book.
	SourceContacts SourceKind = "contacts"

	// SourceMessages is the text message store.
	SourceMessages SourceKind = "messages"

	// SourceCallEvents is the call history.
	SourceCallEvents SourceKind = "call_events"

	// SourceCalendarEvents is the calendar event store.
	SourceCalendarEvents SourceKind = "calendar_events"

	// SourceContactPhones is the per-contact phone number sub-query.
	// It never produces an artifact of its own.
	SourceContactPhones SourceKind = "contact_phones"
)

// Artifact names, one per extractable source.
const (
	ArtifactContacts = "contacts.json"
	ArtifactMessages = "sms.json"
	ArtifactCalls    = "call_logs.json"
	ArtifactCalendar = "calendar.json"
)

// ListingName is the synthetic retrieval entry describing all artifacts.
const ListingName = "list"

var artifactNames = map[SourceKind]string{
	SourceContacts:       ArtifactContacts,
	SourceMessages:       ArtifactMessages,
	SourceCallEvents:     ArtifactCalls,
	SourceCalendarEvents: ArtifactCalendar,
}

// aliases accepted on the command line and in live queries.
var kindAliases = map[string]SourceKind{
	"contacts":        SourceContacts,
	"messages":        SourceMessages,
	"sms":             SourceMessages,
	"call_events":     SourceCallEvents,
	"calls":           SourceCallEvents,
	"call_logs":       SourceCallEvents,
	"calendar_events": SourceCalendarEvents,
	"calendar":        SourceCalendarEvents,
}

// AllSourceKinds returns the extractable kinds in their canonical run order.
func AllSourceKinds() []SourceKind {
	return []SourceKind{
		SourceContacts,
		SourceMessages,
		SourceCallEvents,
		SourceCalendarEvents,
	}
}

// String returns the kind name.
func (k SourceKind) String() string {
	return string(k)
}

// IsExtractable reports whether the kind produces an artifact.
func (k SourceKind) IsExtractable() bool {
	_, ok := artifactNames[k]
	return ok
}

// ArtifactName returns the fixed artifact filename for the kind,
// or an empty string for kinds that are never staged.
func (k SourceKind) ArtifactName() string {
	return artifactNames[k]
}

// ParseSourceKind resolves a kind from its name or a common alias.
func ParseSourceKind(s string) (SourceKind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: source kind %q", ErrUnsupportedType, s)
	}
	return kind, nil
}

// ParseSourceKinds resolves a list of names, preserving order and dropping duplicates.
// An empty list yields every extractable kind.
func ParseSourceKinds(names []string) ([]SourceKind, error) {
	if len(names) == 0 {
		return AllSourceKinds(), nil
	}
	seen := make(map[SourceKind]bool, len(names))
	kinds := make([]SourceKind, 0, len(names))
	for _, name := range names {
		kind, err := ParseSourceKind(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
