package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceKind_ArtifactName(t *testing.T) {
	tests := []struct {
		kind SourceKind
		want string
	}{
		{SourceContacts, "contacts.json"},
		{SourceMessages, "sms.json"},
		{SourceCallEvents, "call_logs.json"},
		{SourceCalendarEvents, "calendar.json"},
		{SourceContactPhones, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.ArtifactName())
			assert.Equal(t, tt.want != "", tt.kind.IsExtractable())
		})
	}
}

func TestAllSourceKinds_DistinctArtifacts(t *testing.T) {
	seen := map[string]bool{}
	for _, kind := range AllSourceKinds() {
		name := kind.ArtifactName()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate artifact %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, 4)
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		in   string
		want SourceKind
	}{
		{"contacts", SourceContacts},
		{"SMS", SourceMessages},
		{" calls ", SourceCallEvents},
		{"call_logs", SourceCallEvents},
		{"calendar", SourceCalendarEvents},
		{"calendar_events", SourceCalendarEvents},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSourceKind_Unknown(t *testing.T) {
	_, err := ParseSourceKind("photos")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ParseSourceKind("contact_phones")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseSourceKinds(t *testing.T) {
	kinds, err := ParseSourceKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, AllSourceKinds(), kinds)

	kinds, err = ParseSourceKinds([]string{"sms", "messages", "contacts"})
	require.NoError(t, err)
	assert.Equal(t, []SourceKind{SourceMessages, SourceContacts}, kinds)

	_, err = ParseSourceKinds([]string{"sms", "nope"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
