// Package embedding computes vectors for approved memory items.
//
// The Worker drains the pending embedding queue in bounded batches. Only
// rows whose parent memory item is approved are picked up; each vector is
// unit-normalized before storage so similarity search can use a plain dot
// product. Failures are recorded per item and never abort the batch.
package embedding
