// Package domain contains the core business types for Navigator.
// Types here have no dependencies on infrastructure; adapters translate
// to and from these representations at the boundary.
package domain
