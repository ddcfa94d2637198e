package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// NewPeopleService creates a People API service using the provided TokenSource.
// Extra options are appended, e.g. option.WithEndpoint for tests.
func NewPeopleService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*people.Service, error) {
	return people.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}

// NewCalendarService creates a Google Calendar API service using the provided TokenSource.
func NewCalendarService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*calendar.Service, error) {
	return calendar.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}
