// Package ingestlog persists the voice ingestion audit trail in SQLite:
// uploaded audio files, their transcriptions, and structured extractions.
package ingestlog
