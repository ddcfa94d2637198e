// Package contacts reads an account's contacts through the People API.
package contacts

import (
	"context"
	"fmt"

	"google.golang.org/api/people/v1"

	"github.com/DIVT313/forensic-agent/internal/connectors/google"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

const (
	selfResource = "people/me"
	pageSize     = 1000
)

// Reader serves contacts and their phone numbers.
// Contact ids are People API resource names (people/c123).
type Reader struct {
	svc     *people.Service
	auth    driven.TokenProvider
	limiter *google.RateLimiter
}

// NewReader creates a contacts reader. auth may be nil when svc carries
// its own credentials.
func NewReader(svc *people.Service, auth driven.TokenProvider, limiter *google.RateLimiter) *Reader {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServicePeople)
	}
	return &Reader{svc: svc, auth: auth, limiter: limiter}
}

// Name returns the backend identifier.
func (r *Reader) Name() string {
	return domain.BackendGoogle.String()
}

// Open lists connections or, for a phone sub-query, one person's numbers.
func (r *Reader) Open(ctx context.Context, q driven.Query) (driven.RecordStream, error) {
	if r.auth != nil && !r.auth.IsAuthenticated() {
		return nil, fmt.Errorf("%w: google account not connected", domain.ErrUnauthorized)
	}
	switch q.Kind {
	case domain.SourceContacts:
		return google.OpenPages(ctx, r.limiter, r.connections)
	case domain.SourceContactPhones:
		return r.phones(ctx, q.ParentID)
	default:
		return nil, fmt.Errorf("%w: google contacts cannot read %s", domain.ErrUnsupportedType, q.Kind)
	}
}

// Close is a no-op; the API client holds no per-reader resources.
func (r *Reader) Close() error {
	return nil
}

func (r *Reader) connections(ctx context.Context, pageToken string) ([]domain.RawRecord, string, error) {
	call := r.svc.People.Connections.List(selfResource).
		PersonFields("names").
		PageSize(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, "", err
	}

	records := make([]domain.RawRecord, 0, len(resp.Connections))
	for _, p := range resp.Connections {
		if p == nil {
			continue
		}
		records = append(records, domain.RawRecord{
			domain.FieldID:          p.ResourceName,
			domain.FieldDisplayName: displayName(p),
		})
	}
	return records, resp.NextPageToken, nil
}

func (r *Reader) phones(ctx context.Context, resourceName string) (driven.RecordStream, error) {
	if resourceName == "" {
		return nil, fmt.Errorf("%w: phone query without contact", domain.ErrInvalidInput)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	p, err := r.svc.People.Get(resourceName).PersonFields("phoneNumbers").Context(ctx).Do()
	if err != nil {
		return nil, google.WrapError(err)
	}

	records := make([]domain.RawRecord, 0, len(p.PhoneNumbers))
	for _, n := range p.PhoneNumbers {
		if n == nil || n.Value == "" {
			continue
		}
		records = append(records, domain.RawRecord{domain.FieldNumber: n.Value})
	}
	return google.RecordsStream(records), nil
}

// displayName prefers the primary name. A person without names maps to nil.
func displayName(p *people.Person) any {
	var fallback *people.Name
	for _, n := range p.Names {
		if n == nil || n.DisplayName == "" {
			continue
		}
		if n.Metadata != nil && n.Metadata.Primary {
			return n.DisplayName
		}
		if fallback == nil {
			fallback = n
		}
	}
	if fallback == nil {
		return nil
	}
	return fallback.DisplayName
}
