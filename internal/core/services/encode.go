package services

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

const artifactIndent = "  "

// encodeArtifact serialises records as an indented JSON array.
// A nil or empty slice encodes as [].
func encodeArtifact[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", artifactIndent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncode, err)
	}
	return data, nil
}

// listing is the tabular shape served for the synthetic "list" entry.
type listing struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

var listingColumns = []string{"name", "size", "modified"}

// encodeListing renders artifact metadata with modification times in epoch milliseconds.
func encodeListing(infos []domain.ArtifactInfo) ([]byte, error) {
	l := listing{Columns: listingColumns, Rows: make([][]any, 0, len(infos))}
	for _, info := range infos {
		l.Rows = append(l.Rows, []any{info.Name, info.Size, epochMillis(info.Modified)})
	}
	data, err := json.MarshalIndent(l, "", artifactIndent)
	if err != nil {
		return nil, fmt.Errorf("%w: listing: %v", domain.ErrEncode, err)
	}
	return data, nil
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
