// Package calendar reads events from an account's Google calendars.
package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/DIVT313/forensic-agent/internal/connectors/google"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// DefaultCalendarID is the account's primary calendar.
const DefaultCalendarID = "primary"

// Config holds Google Calendar reader configuration.
type Config struct {
	// CalendarIDs lists the calendars to read, in order.
	CalendarIDs []string
	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CalendarIDs: []string{DefaultCalendarID},
		MaxResults:  250,
	}
}

// Reader serves calendar events from one or more calendars.
type Reader struct {
	svc     *calendar.Service
	auth    driven.TokenProvider
	limiter *google.RateLimiter
	cfg     Config
}

// NewReader creates a calendar reader. auth may be nil when svc carries
// its own credentials.
func NewReader(svc *calendar.Service, auth driven.TokenProvider, limiter *google.RateLimiter, cfg Config) *Reader {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceCalendar)
	}
	if len(cfg.CalendarIDs) == 0 {
		cfg.CalendarIDs = []string{DefaultCalendarID}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	return &Reader{svc: svc, auth: auth, limiter: limiter, cfg: cfg}
}

// Name returns the backend identifier.
func (r *Reader) Name() string {
	return domain.BackendGoogle.String()
}

// Open streams events from every configured calendar in turn.
func (r *Reader) Open(ctx context.Context, q driven.Query) (driven.RecordStream, error) {
	if q.Kind != domain.SourceCalendarEvents {
		return nil, fmt.Errorf("%w: google calendar cannot read %s", domain.ErrUnsupportedType, q.Kind)
	}
	if r.auth != nil && !r.auth.IsAuthenticated() {
		return nil, fmt.Errorf("%w: google account not connected", domain.ErrUnauthorized)
	}
	return google.OpenPages(ctx, r.limiter, r.pager())
}

// Close is a no-op; the API client holds no per-reader resources.
func (r *Reader) Close() error {
	return nil
}

// pager flattens per-calendar paging into one token sequence.
// Page tokens handed to the stream are "<calendar index>:<api token>".
func (r *Reader) pager() google.FetchPage {
	return func(ctx context.Context, token string) ([]domain.RawRecord, string, error) {
		idx, apiToken, err := splitToken(token, len(r.cfg.CalendarIDs))
		if err != nil {
			return nil, "", err
		}
		calendarID := r.cfg.CalendarIDs[idx]

		call := r.svc.Events.List(calendarID).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(r.cfg.MaxResults).
			Context(ctx)
		if apiToken != "" {
			call = call.PageToken(apiToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, "", fmt.Errorf("calendar %s: %w", calendarID, err)
		}

		records := make([]domain.RawRecord, 0, len(resp.Items))
		for _, ev := range resp.Items {
			if rec, ok := EventToRawRecord(ev, calendarID); ok {
				records = append(records, rec)
			}
		}

		switch {
		case resp.NextPageToken != "":
			return records, fmt.Sprintf("%d:%s", idx, resp.NextPageToken), nil
		case idx+1 < len(r.cfg.CalendarIDs):
			return records, fmt.Sprintf("%d:", idx+1), nil
		default:
			return records, "", nil
		}
	}
}

func splitToken(token string, calendars int) (int, string, error) {
	if token == "" {
		return 0, "", nil
	}
	head, apiToken, ok := strings.Cut(token, ":")
	idx, err := strconv.Atoi(head)
	if !ok || err != nil || idx < 0 || idx >= calendars {
		return 0, "", fmt.Errorf("bad page token %q", token)
	}
	return idx, apiToken, nil
}
