// Package domain defines the core entities of the forensic extraction agent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceKind: One of the four record sources and its artifact name
//   - RawRecord: An untyped row yielded by a SourceReader
//   - Contact, Message, CallEvent, CalendarEvent: Normalised records
//   - Outcome: The terminal result of one source extraction
//   - ArtifactInfo: Metadata of a staged artifact
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
