package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestEncodeArtifact_EmptyIsArray(t *testing.T) {
	data, err := encodeArtifact[domain.Message](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEncodeArtifact_FieldOrderAndIndent(t *testing.T) {
	data, err := encodeArtifact([]domain.Message{
		{Address: strPtr("+15550001"), Body: nil, Date: 1700000000000, Type: 1},
	})
	require.NoError(t, err)

	want := "[\n" +
		"  {\n" +
		"    \"address\": \"+15550001\",\n" +
		"    \"body\": null,\n" +
		"    \"date\": 1700000000000,\n" +
		"    \"type\": 1\n" +
		"  }\n" +
		"]"
	assert.Equal(t, want, string(data))
}

func TestEncodeArtifact_ContactPhonesNeverNull(t *testing.T) {
	data, err := encodeArtifact([]domain.Contact{{ID: "1", Phones: []string{}}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","name":null,"phones":[]}]`, string(data))
}

func TestEncodeListing(t *testing.T) {
	modified := time.UnixMilli(1700000000123)
	data, err := encodeListing([]domain.ArtifactInfo{
		{Name: "sms.json", Size: 42, Modified: modified},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["name","size","modified"],"rows":[["sms.json",42,1700000000123]]}`, string(data))

	data, err = encodeListing(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["name","size","modified"],"rows":[]}`, string(data))
}
