// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceReader: Yields raw records for a source kind (sqlite dumps, Google APIs)
//   - ArtifactStore: Atomic staging of serialised artifacts
//   - ConfigStore: Application configuration
//   - TokenProvider: Access tokens for the Google backend
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunObserver: Receives outcomes for metrics. Without it, nothing is exported.
//   - ArtifactWatcher: Change feed of the staging directory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or CLI package
package driven
