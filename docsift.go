// Package docsift crawls documentation websites, indexes them for hybrid
// retrieval, and answers natural language search queries over the index.
//
// Pages are rendered, reduced to markdown, split into heading-aware chunks,
// embedded into fixed-size vectors, and stored twice: as JSON in a local
// mirror and as points in a vector database. Search prefers vector
// similarity and falls back to lexical scoring over the mirror.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, qdrant/, sqlite/, gemini/).
package docsift
