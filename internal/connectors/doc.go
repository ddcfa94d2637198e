// Package connectors holds SourceReader implementations backed by remote
// accounts. Each subpackage serves the source kinds its API can answer:
//
//   - google/contacts: contacts and contact phones from the People API
//   - google/calendar: calendar events from the Calendar API
//
// Device dumps are read by adapters/driven/sources/sqlite instead.
package connectors
