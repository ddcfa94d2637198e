package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStagingDir        = "staging.dir"
	keyParallel          = "extraction.parallel"
	keySources           = "extraction.sources"
	keyDeviceDir         = "sources.device.dir"
	keyGoogleToken       = "google.access_token"
	keyGoogleCalendarIDs = "google.calendar_ids"
	keyGoogleRPS         = "google.requests_per_second"
	keyServerAddr        = "server.addr"
)

// backendKey returns the config key selecting the backend for a kind.
func backendKey(kind domain.SourceKind) string {
	return "sources." + kind.String() + ".backend"
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	home        string
}

// NewSettingsService creates a new settings service.
// home is the data directory that relative defaults are derived from.
func NewSettingsService(configStore driven.ConfigStore, home string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		home:        home,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := s.GetDefaults()

	settings := &domain.AppSettings{
		Staging: domain.StagingSettings{
			Dir: s.getString(keyStagingDir, defaults.Staging.Dir),
		},
		Extraction: domain.ExtractionSettings{
			Parallel: s.getBool(keyParallel, defaults.Extraction.Parallel),
			Sources:  s.getSources(defaults.Extraction.Sources),
		},
		Device: domain.DeviceSettings{
			Dir: s.getString(keyDeviceDir, defaults.Device.Dir),
		},
		Backends: make(map[domain.SourceKind]domain.SourceBackend, len(defaults.Backends)),
		Google: domain.GoogleSettings{
			AccessToken:       s.configStore.GetString(keyGoogleToken),
			CalendarIDs:       s.getStringSlice(keyGoogleCalendarIDs, defaults.Google.CalendarIDs),
			RequestsPerSecond: s.getInt(keyGoogleRPS, defaults.Google.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}
	for kind, def := range defaults.Backends {
		settings.Backends[kind] = s.getBackend(kind, def)
	}

	return settings, nil
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case keyStagingDir, keyDeviceDir, keyServerAddr:
		if value == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
		return s.store(key, value)

	case keyGoogleToken:
		return s.store(key, value)

	case keyParallel:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		return s.store(key, b)

	case keyGoogleRPS:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s expects a positive integer", domain.ErrInvalidInput, key)
		}
		return s.store(key, n)

	case keySources:
		kinds, err := domain.ParseSourceKinds(splitList(value))
		if err != nil {
			return err
		}
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return s.store(key, names)

	case keyGoogleCalendarIDs:
		ids := splitList(value)
		if len(ids) == 0 {
			return fmt.Errorf("%w: %s must name at least one calendar", domain.ErrInvalidInput, key)
		}
		return s.store(key, ids)
	}

	for _, kind := range domain.AllSourceKinds() {
		if key != backendKey(kind) {
			continue
		}
		backend := domain.SourceBackend(value)
		if !backend.IsValid() || !backend.Supports(kind) {
			return fmt.Errorf("%w: backend %q cannot serve %s", domain.ErrUnsupportedType, value, kind)
		}
		return s.store(key, value)
	}

	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Values returns every effective setting rendered as a string.
// The access token is masked.
func (s *SettingsService) Values() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(settings.Extraction.Sources))
	for i, k := range settings.Extraction.Sources {
		sources[i] = k.String()
	}
	token := ""
	if settings.Google.AccessToken != "" {
		token = "********"
	}

	values := map[string]string{
		keyStagingDir:        settings.Staging.Dir,
		keyParallel:          strconv.FormatBool(settings.Extraction.Parallel),
		keySources:           strings.Join(sources, ","),
		keyDeviceDir:         settings.Device.Dir,
		keyGoogleToken:       token,
		keyGoogleCalendarIDs: strings.Join(settings.Google.CalendarIDs, ","),
		keyGoogleRPS:         strconv.Itoa(settings.Google.RequestsPerSecond),
		keyServerAddr:        settings.Server.Addr,
	}
	for kind, backend := range settings.Backends {
		values[backendKey(kind)] = backend.String()
	}
	return values, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings(s.home)
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// SortedKeys returns the keys of a Values map in display order.
func SortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) store(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSources(defaultVal []domain.SourceKind) []domain.SourceKind {
	names := s.configStore.GetStringSlice(keySources)
	if len(names) == 0 {
		return defaultVal
	}
	kinds, err := domain.ParseSourceKinds(names)
	if err != nil {
		return defaultVal
	}
	return kinds
}

func (s *SettingsService) getBackend(kind domain.SourceKind, defaultVal domain.SourceBackend) domain.SourceBackend {
	val := s.configStore.GetString(backendKey(kind))
	if val == "" {
		return defaultVal
	}
	backend := domain.SourceBackend(val)
	if !backend.IsValid() || !backend.Supports(kind) {
		return defaultVal
	}
	return backend
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
