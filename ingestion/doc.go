// Package ingestion turns logged interactions into proposed memory items.
//
// The Pipeline persists each interaction synchronously and hands the summary
// text to a bounded worker pool for LLM memory extraction. Extracted proposals
// are stored as proposed memory items with content-derived IDs, so repeated
// extraction of the same fact is idempotent. Extraction failures never fail
// the interaction write.
package ingestion
