package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/darnellt0/em-crm-core/core"
)

// Key prefixes for different data types
const (
	contactPrefix       = "conrec"
	contactEmailPrefix  = "conem"
	contactPhonePrefix  = "conph"
	contactIDSeq        = "conrecseq"
	interactionPrefix   = "intrec"
	interactionByContactPrefix = "intrecc"
	interactionIDSeq    = "intrecseq"
	memoryItemPrefix    = "memrec"
	embeddingPrefix     = "membrec"
	embeddingPendingPrefix = "membpend"
	importJobPrefix     = "impjob"
	importJobIDSeq      = "impjobseq"
	importRowPrefix     = "improw"
	savedViewPrefix     = "viewrec"
	savedViewIDSeq      = "viewrecseq"
)

// makeContactKey generates a key for a contact by ID.
func makeContactKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", contactPrefix, id))
}

// makeContactEmailKey generates a key for the unique email index.
func makeContactEmailKey(email string) []byte {
	return []byte(contactEmailPrefix + ":" + email)
}

// makeContactPhoneKey generates a key for the unique normalized-phone index.
func makeContactPhoneKey(phoneNormalized string) []byte {
	return []byte(contactPhonePrefix + ":" + phoneNormalized)
}

// makeInteractionKey generates a key for an interaction by ID.
func makeInteractionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", interactionPrefix, id))
}

// makeInteractionContactKey generates a composite key for the per-contact index.
// Format: prefix:contactID:occurredAt:id, all BigEndian so lexicographic
// iteration yields chronological order within a contact.
func makeInteractionContactKey(contactID core.ID, occurredAtMicro int64, id core.ID) []byte {
	prefix := []byte(interactionByContactPrefix + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(contactID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(occurredAtMicro))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialInteractionContactKey generates the per-contact index prefix.
func makePartialInteractionContactKey(contactID core.ID) []byte {
	prefix := []byte(interactionByContactPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(contactID))
	return buf
}

// makeMemoryItemKey generates a key for a memory item by ID.
func makeMemoryItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", memoryItemPrefix, id))
}

// makeEmbeddingKey generates a key for a memory embedding by its item ID.
func makeEmbeddingKey(memoryItemID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, memoryItemID))
}

// makeEmbeddingPendingKey generates a key for the pending-embedding index.
// BigEndian item IDs give the worker a stable scan order.
func makeEmbeddingPendingKey(memoryItemID core.ID) []byte {
	prefix := []byte(embeddingPendingPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(memoryItemID))
	return buf
}

// makeImportJobKey generates a key for an import job by ID.
func makeImportJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", importJobPrefix, id))
}

// makeImportRowKey generates a composite key for an import row.
// Format: prefix:jobID:rowIndex, BigEndian so iteration yields ascending
// row order within a job.
func makeImportRowKey(jobID core.ID, rowIndex int) []byte {
	prefix := []byte(importRowPrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(jobID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(rowIndex))
	return buf
}

// makePartialImportRowKey generates the per-job row prefix.
func makePartialImportRowKey(jobID core.ID) []byte {
	prefix := []byte(importRowPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(jobID))
	return buf
}

// makeSavedViewKey generates a key for a saved view by ID.
func makeSavedViewKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", savedViewPrefix, id))
}
