package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DIVT313/forensic-agent/internal/adapters/driven/config/file"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/metrics"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/sources/sqlite"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/storage/filesystem"
	"github.com/DIVT313/forensic-agent/internal/adapters/driving/cli"
	"github.com/DIVT313/forensic-agent/internal/connectors/google"
	gcalendar "github.com/DIVT313/forensic-agent/internal/connectors/google/calendar"
	gcontacts "github.com/DIVT313/forensic-agent/internal/connectors/google/contacts"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/services"
	"github.com/DIVT313/forensic-agent/internal/logger"
)

// Environment overrides.
const (
	envHome        = "FORENSIC_AGENT_HOME"
	envGoogleToken = "FORENSIC_AGENT_GOOGLE_TOKEN"
)

// newSetup returns the cli.Setup that wires adapters for an agent home.
func newSetup(ctx context.Context) cli.Setup {
	return func(home string) (*cli.Dependencies, error) {
		home, err := resolveHome(home)
		if err != nil {
			return nil, err
		}
		return wire(ctx, home)
	}
}

// resolveHome picks the --home flag, then $FORENSIC_AGENT_HOME, then
// ~/.forensic-agent.
func resolveHome(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(envHome); env != "" {
		return env, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(userHome, file.DefaultDirName), nil
}

func wire(ctx context.Context, home string) (*cli.Dependencies, error) {
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(configStore, home)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if token := os.Getenv(envGoogleToken); token != "" {
		settings.Google.AccessToken = token
	}

	store, err := filesystem.NewStore(settings.Staging.Dir)
	if err != nil {
		return nil, err
	}

	readers, closeReaders, err := buildReaders(ctx, settings)
	if err != nil {
		return nil, err
	}

	observer := metrics.NewObserver()
	orchestrator := services.NewOrchestrator(store, readers,
		services.WithParallel(settings.Extraction.Parallel),
		services.WithObserver(observer),
		services.WithDefaultKinds(settings.Extraction.Sources),
	)

	logger.Debug("home %s, staging %s, device %s", home, settings.Staging.Dir, settings.Device.Dir)

	return &cli.Dependencies{
		Extraction: orchestrator,
		Retrieval:  services.NewRetrievalService(store, readers),
		Settings:   settingsService,
		Watcher:    store,
		Metrics:    observer.Handler(),
		Close:      closeReaders,
	}, nil
}

// buildReaders maps every kind to the reader of its configured backend.
// Contact phone lookups follow the contacts backend.
func buildReaders(
	ctx context.Context,
	settings *domain.AppSettings,
) (map[domain.SourceKind]driven.SourceReader, func() error, error) {
	device := sqlite.NewReader(settings.Device.Dir)
	all := []driven.SourceReader{device}

	var (
		people   driven.SourceReader
		calendar driven.SourceReader
	)
	googleReader := func(kind domain.SourceKind) (driven.SourceReader, error) {
		auth := google.NewStaticTokenProvider(settings.Google.AccessToken)
		ts := google.NewTokenSource(ctx, auth)
		limiter := google.NewRateLimiterWithConfig(google.RateLimitConfig{
			RequestsPerSecond: float64(settings.Google.RequestsPerSecond),
			BurstSize:         settings.Google.RequestsPerSecond * 2,
		})

		if kind == domain.SourceCalendarEvents {
			if calendar == nil {
				svc, err := google.NewCalendarService(ctx, ts)
				if err != nil {
					return nil, fmt.Errorf("calendar service: %w", err)
				}
				cfg := gcalendar.DefaultConfig()
				if len(settings.Google.CalendarIDs) > 0 {
					cfg.CalendarIDs = settings.Google.CalendarIDs
				}
				calendar = gcalendar.NewReader(svc, auth, limiter, cfg)
				all = append(all, calendar)
			}
			return calendar, nil
		}
		if people == nil {
			svc, err := google.NewPeopleService(ctx, ts)
			if err != nil {
				return nil, fmt.Errorf("people service: %w", err)
			}
			people = gcontacts.NewReader(svc, auth, limiter)
			all = append(all, people)
		}
		return people, nil
	}

	readers := make(map[domain.SourceKind]driven.SourceReader, 5)
	for _, kind := range append(domain.AllSourceKinds(), domain.SourceContactPhones) {
		backend := settings.Backend(kind)
		if kind == domain.SourceContactPhones {
			backend = settings.Backend(domain.SourceContacts)
		}
		if backend != domain.BackendGoogle {
			readers[kind] = device
			continue
		}
		r, err := googleReader(kind)
		if err != nil {
			return nil, nil, err
		}
		readers[kind] = r
	}

	closeAll := func() error {
		var errs []error
		for _, r := range all {
			if err := r.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", r.Name(), err))
			}
		}
		return errors.Join(errs...)
	}
	return readers, closeAll, nil
}
