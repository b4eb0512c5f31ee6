// Package search answers natural-language queries over approved memories.
//
// The Searcher embeds the query, asks the vector index for the nearest
// approved memory embeddings, and joins each hit with its memory item and
// contact. Only approved items with ready embeddings can surface; proposed
// and rejected memories are invisible to search by construction.
package search
