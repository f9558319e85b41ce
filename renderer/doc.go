// Package renderer tokenizes, classifies, and extracts linguistic
// elements from text. The tokenization and classification algorithms
// themselves are supplied by a caller-provided TokenizationService and
// ClassificationService; this package owns only the pool-backed
// scratch buffers and the thread-safety around calling into them.
package renderer
