// Package daemon wires the catalog, resolver, ingestion services and HTTP
// API together and enforces single-instance execution via a lock file.
package daemon
