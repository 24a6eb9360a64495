// Package pipeline runs the end-to-end analysis for one embedding model
// over a concept set: cache-aware embedding, quality validation, 2D
// projection onto the shared terrain, clustering, and per-concept scoring.
//
// The package supports parallel per-language embedding, progress tracking,
// and retry logic with exponential backoff. Malformed or partially covered
// input degrades to warnings and rejections rather than failing the run.
package pipeline
