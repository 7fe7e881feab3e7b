// Package resolver maps free-form exercise names to catalog identifiers.
// Candidate selection combines alias lookups with fuzzy name matching, then
// an LLM oracle picks the best candidate. Every resolution ends in exactly
// one of five outcomes; per-request failures are folded into the result
// rather than returned as errors.
package resolver
