// Package document tracks delivery of outbound trading-partner files.
//
// Each file is a Document keyed by its deterministic filename and moves through
//
//	PENDING -> UPLOADED
//	PENDING -> ERROR -> PENDING (retry)
//	UPLOADED -> PENDING (forced resend only)
//
// Persisting a Document is an upsert on the filename, so a retried or forced attempt
// updates the existing record instead of creating a second one.
package document
