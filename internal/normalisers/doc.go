// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. Document IDs
// are derived from the document URI so a rebuilt index assigns the same
// IDs to the same files.
package normalisers
