// Package services contains the core application logic: the research
// orchestrator, the reasoner, the synthesizer, the internal retrieval
// tool, and the index registry. Services depend only on domain types
// and ports, never on concrete adapters.
package services
