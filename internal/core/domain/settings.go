package domain

import "path/filepath"

// SourceBackend selects which SourceReader serves a kind.
type SourceBackend string

// Available backends.
const (
	// BackendSQLite reads Android provider database dumps from the device directory.
	BackendSQLite SourceBackend = "sqlite"

	// BackendGoogle reads the account's Google People and Calendar data.
	BackendGoogle SourceBackend = "google"
)

// IsValid returns true if the backend is recognised.
func (b SourceBackend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendGoogle:
		return true
	default:
		return false
	}
}

// Supports reports whether the backend can serve the kind.
func (b SourceBackend) Supports(kind SourceKind) bool {
	switch b {
	case BackendSQLite:
		return kind.IsExtractable() || kind == SourceContactPhones
	case BackendGoogle:
		return kind == SourceContacts || kind == SourceContactPhones || kind == SourceCalendarEvents
	default:
		return false
	}
}

// String returns the string representation.
func (b SourceBackend) String() string {
	return string(b)
}

// StagingSettings configures where artifacts are written.
type StagingSettings struct {
	Dir string
}

// ExtractionSettings configures orchestrated runs.
type ExtractionSettings struct {
	// Parallel runs source extractions concurrently instead of in order.
	Parallel bool

	// Sources limits which kinds a run extracts.
	Sources []SourceKind
}

// DeviceSettings locates the device database dumps.
type DeviceSettings struct {
	Dir string
}

// GoogleSettings configures the Google backend.
type GoogleSettings struct {
	AccessToken       string
	CalendarIDs       []string
	RequestsPerSecond int
}

// IsConfigured returns true if a token is available.
func (g GoogleSettings) IsConfigured() bool {
	return g.AccessToken != ""
}

// ServerSettings configures the retrieval HTTP server.
type ServerSettings struct {
	Addr string
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Staging    StagingSettings
	Extraction ExtractionSettings
	Device     DeviceSettings
	Backends   map[SourceKind]SourceBackend
	Google     GoogleSettings
	Server     ServerSettings
}

// Backend returns the configured backend for a kind, defaulting to sqlite.
func (s AppSettings) Backend(kind SourceKind) SourceBackend {
	if b, ok := s.Backends[kind]; ok && b.Supports(kind) {
		return b
	}
	return BackendSQLite
}

// DefaultAppSettings returns the settings used when nothing is configured.
// home is the agent's data directory.
func DefaultAppSettings(home string) AppSettings {
	backends := make(map[SourceKind]SourceBackend, 4)
	for _, kind := range AllSourceKinds() {
		backends[kind] = BackendSQLite
	}
	return AppSettings{
		Staging:    StagingSettings{Dir: filepath.Join(home, "extracted")},
		Extraction: ExtractionSettings{Sources: AllSourceKinds()},
		Device:     DeviceSettings{Dir: filepath.Join(home, "device")},
		Backends:   backends,
		Google: GoogleSettings{
			CalendarIDs:       []string{"primary"},
			RequestsPerSecond: 5,
		},
		Server: ServerSettings{Addr: "127.0.0.1:8765"},
	}
}
