// Copyright 2025 Elevated Movements
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/darnellt0/em-crm-core/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalContact serializes a Contact to bytes.
func MarshalContact(contact *core.Contact) []byte {
	buf := make([]byte, core.ContactMUS.Size(*contact))
	core.ContactMUS.Marshal(*contact, buf)
	return buf
}

// UnmarshalContact deserializes a Contact from bytes.
func UnmarshalContact(data []byte) (*core.Contact, error) {
	contact, _, err := core.ContactMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// MarshalInteraction serializes an Interaction to bytes.
func MarshalInteraction(interaction *core.Interaction) []byte {
	buf := make([]byte, core.InteractionMUS.Size(*interaction))
	core.InteractionMUS.Marshal(*interaction, buf)
	return buf
}

// UnmarshalInteraction deserializes an Interaction from bytes.
func UnmarshalInteraction(data []byte) (*core.Interaction, error) {
	interaction, _, err := core.InteractionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// MarshalMemoryItem serializes a MemoryItem to bytes.
func MarshalMemoryItem(item *core.MemoryItem) []byte {
	buf := make([]byte, core.MemoryItemMUS.Size(*item))
	core.MemoryItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalMemoryItem deserializes a MemoryItem from bytes.
func UnmarshalMemoryItem(data []byte) (*core.MemoryItem, error) {
	item, _, err := core.MemoryItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalMemoryEmbedding serializes a MemoryEmbedding to bytes.
func MarshalMemoryEmbedding(embedding *core.MemoryEmbedding) []byte {
	buf := make([]byte, core.MemoryEmbeddingMUS.Size(*embedding))
	core.MemoryEmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalMemoryEmbedding deserializes a MemoryEmbedding from bytes.
func UnmarshalMemoryEmbedding(data []byte) (*core.MemoryEmbedding, error) {
	embedding, _, err := core.MemoryEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

// MarshalImportJob serializes an ImportJob to bytes.
func MarshalImportJob(job *core.ImportJob) []byte {
	buf := make([]byte, core.ImportJobMUS.Size(*job))
	core.ImportJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalImportJob deserializes an ImportJob from bytes.
func UnmarshalImportJob(data []byte) (*core.ImportJob, error) {
	job, _, err := core.ImportJobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalImportRow serializes an ImportRow to bytes.
func MarshalImportRow(row *core.ImportRow) []byte {
	buf := make([]byte, core.ImportRowMUS.Size(*row))
	core.ImportRowMUS.Marshal(*row, buf)
	return buf
}

// UnmarshalImportRow deserializes an ImportRow from bytes.
func UnmarshalImportRow(data []byte) (*core.ImportRow, error) {
	row, _, err := core.ImportRowMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarshalSavedView serializes a SavedView to bytes.
func MarshalSavedView(view *core.SavedView) []byte {
	buf := make([]byte, core.SavedViewMUS.Size(*view))
	core.SavedViewMUS.Marshal(*view, buf)
	return buf
}

// UnmarshalSavedView deserializes a SavedView from bytes.
func UnmarshalSavedView(data []byte) (*core.SavedView, error) {
	view, _, err := core.SavedViewMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
