// Package review applies human decisions to AI-proposed memory items.
//
// Every extracted memory starts proposed; nothing reaches search until a
// reviewer approves it. Approval clears any prior rejection reason and
// enqueues the item for embedding, re-approval after an embedding failure
// resets the error row to pending. Rejection records the reason and drops
// the pin flag. Both transitions are idempotent so bulk actions can be
// retried safely.
package review
