// Package google provides shared infrastructure for the Google account
// source readers.
//
// The contacts and calendar readers use this package to:
//   - bridge a TokenProvider to oauth2.TokenSource
//   - create People and Calendar API clients
//   - map 401/403 responses to domain.ErrUnauthorized
//   - stay within API quotas with a token bucket limiter
//   - page through list endpoints as a RecordStream
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewPeopleService(ctx, ts)
//
// # OAuth2 Scopes
//
// Tokens must carry these read-only scopes:
//   - https://www.googleapis.com/auth/contacts.readonly
//   - https://www.googleapis.com/auth/calendar.readonly
package google
