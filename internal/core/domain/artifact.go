package domain

import (
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactInfo describes a staged artifact.
type ArtifactInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ArtifactEventOp is the kind of change observed in the staging directory.
type ArtifactEventOp string

const (
	ArtifactWritten ArtifactEventOp = "written"
	ArtifactRemoved ArtifactEventOp = "removed"
)

// ArtifactEvent is emitted when a staged artifact changes.
type ArtifactEvent struct {
	Name string
	Op   ArtifactEventOp
	At   time.Time
}

// DefaultContentType is used for unknown extensions.
const DefaultContentType = "application/json"

// ContentTypeFor returns the MIME type for an artifact name by extension.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case "":
		return DefaultContentType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return DefaultContentType
}

// ValidArtifactName reports whether name can address a file inside the staging directory.
func ValidArtifactName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "\x00")
}
