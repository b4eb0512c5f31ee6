// Package importer reconciles CSV uploads against the contact store.
//
// A job moves through uploaded -> parsed -> mapped -> running -> completed.
// Upload parses the file into rows, SetMapping binds CSV columns to contact
// fields, Validate dry-runs the reconciliation without writing, and Run
// executes it row by row: match by email first, then by normalized phone,
// update on match (tags merged as a set union), create otherwise, skip rows
// that carry no identifying signal at all. Each row's outcome is persisted
// immediately, so later rows in the same job can match contacts created by
// earlier ones.
package importer
