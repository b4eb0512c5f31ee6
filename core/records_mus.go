package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for every persisted type. Field order is part of
// the storage format: append new fields at the end only.

var (
	IDMUS              = idSer{}
	ContactMUS         = contactSer{}
	InteractionMUS     = interactionSer{}
	MemoryItemMUS      = memoryItemSer{}
	MemoryEmbeddingMUS = memoryEmbeddingSer{}
	ImportJobMUS       = importJobSer{}
	ImportRowMUS       = importRowSer{}
	SavedViewMUS       = savedViewSer{}
)

var (
	_ mus.Serializer[ID]              = IDMUS
	_ mus.Serializer[Contact]         = ContactMUS
	_ mus.Serializer[Interaction]     = InteractionMUS
	_ mus.Serializer[MemoryItem]      = MemoryItemMUS
	_ mus.Serializer[MemoryEmbedding] = MemoryEmbeddingMUS
	_ mus.Serializer[ImportJob]       = ImportJobMUS
	_ mus.Serializer[ImportRow]       = ImportRowMUS
	_ mus.Serializer[SavedView]       = SavedViewMUS
)

var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](varint.Float32)
	stringMapMUS    = ord.NewMapSer[string, string](ord.String, ord.String)
	timeMUS         = timeSer{}
)

// timeSer encodes a time as a presence flag plus Unix microseconds.
// The flag keeps zero times round-trippable (IsZero survives storage).
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(!t.IsZero(), bs)
	if !t.IsZero() {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return
}

func (timeSer) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	set, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !set {
		return
	}
	var (
		us int64
		n1 int
	)
	us, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t = time.UnixMicro(us).UTC()
	return
}

func (timeSer) Size(t time.Time) (size int) {
	size = ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return
}

func (s timeSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type contactSer struct{}

func (contactSer) Marshal(c Contact, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.FirstName, bs[n:])
	n += ord.String.Marshal(c.LastName, bs[n:])
	n += ord.String.Marshal(c.Email, bs[n:])
	n += ord.String.Marshal(c.Phone, bs[n:])
	n += ord.String.Marshal(c.PhoneNormalized, bs[n:])
	n += varint.Int.Marshal(int(c.Stage), bs[n:])
	n += ord.String.Marshal(c.Persona, bs[n:])
	n += ord.String.Marshal(c.Source, bs[n:])
	n += stringSliceMUS.Marshal(c.Tags, bs[n:])
	n += IDMUS.Marshal(c.OwnerId, bs[n:])
	n += IDMUS.Marshal(c.OrgId, bs[n:])
	n += timeMUS.Marshal(c.NextFollowUpAt, bs[n:])
	n += timeMUS.Marshal(c.LastTouchAt, bs[n:])
	n += timeMUS.Marshal(c.InsertedAt, bs[n:])
	n += timeMUS.Marshal(c.UpdatedAt, bs[n:])
	return
}

func (contactSer) Unmarshal(bs []byte) (c Contact, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.FirstName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.LastName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Email, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Phone, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.PhoneNormalized, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var stage int
	if stage, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Stage = LifecycleStage(stage)
	n += n1
	if c.Persona, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Tags, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.OrgId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.NextFollowUpAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.LastTouchAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (contactSer) Size(c Contact) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.FirstName)
	size += ord.String.Size(c.LastName)
	size += ord.String.Size(c.Email)
	size += ord.String.Size(c.Phone)
	size += ord.String.Size(c.PhoneNormalized)
	size += varint.Int.Size(int(c.Stage))
	size += ord.String.Size(c.Persona)
	size += ord.String.Size(c.Source)
	size += stringSliceMUS.Size(c.Tags)
	size += IDMUS.Size(c.OwnerId)
	size += IDMUS.Size(c.OrgId)
	size += timeMUS.Size(c.NextFollowUpAt)
	size += timeMUS.Size(c.LastTouchAt)
	size += timeMUS.Size(c.InsertedAt)
	size += timeMUS.Size(c.UpdatedAt)
	return
}

func (s contactSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type interactionSer struct{}

func (interactionSer) Marshal(v Interaction, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ContactId, bs[n:])
	n += varint.Int.Marshal(int(v.Type), bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += ord.String.Marshal(v.Outcome, bs[n:])
	n += timeMUS.Marshal(v.OccurredAt, bs[n:])
	n += IDMUS.Marshal(v.CreatedBy, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return
}

func (interactionSer) Unmarshal(bs []byte) (v Interaction, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ContactId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var typ int
	if typ, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Type = InteractionType(typ)
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Outcome, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.OccurredAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedBy, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (interactionSer) Size(v Interaction) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ContactId)
	size += varint.Int.Size(int(v.Type))
	size += ord.String.Size(v.Summary)
	size += ord.String.Size(v.Outcome)
	size += timeMUS.Size(v.OccurredAt)
	size += IDMUS.Size(v.CreatedBy)
	size += timeMUS.Size(v.InsertedAt)
	return
}

func (s interactionSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type memoryItemSer struct{}

func (memoryItemSer) Marshal(m MemoryItem, bs []byte) (n int) {
	n = IDMUS.Marshal(m.Id, bs)
	n += IDMUS.Marshal(m.ContactId, bs[n:])
	n += ord.String.Marshal(m.Content, bs[n:])
	n += ord.String.Marshal(m.MemoryType, bs[n:])
	n += varint.Int.Marshal(int(m.Status), bs[n:])
	n += ord.Bool.Marshal(m.IsPinned, bs[n:])
	n += varint.Float32.Marshal(m.Confidence, bs[n:])
	n += ord.String.Marshal(m.ProposedBy, bs[n:])
	n += IDMUS.Marshal(m.ReviewedBy, bs[n:])
	n += timeMUS.Marshal(m.ReviewedAt, bs[n:])
	n += ord.String.Marshal(m.RejectionReason, bs[n:])
	n += timeMUS.Marshal(m.InsertedAt, bs[n:])
	n += timeMUS.Marshal(m.UpdatedAt, bs[n:])
	return
}

func (memoryItemSer) Unmarshal(bs []byte) (m MemoryItem, n int, err error) {
	var n1 int
	if m.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if m.ContactId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.MemoryType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	m.Status = MemoryStatus(status)
	n += n1
	if m.IsPinned, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Confidence, n1, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ProposedBy, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ReviewedBy, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ReviewedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.RejectionReason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	m.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (memoryItemSer) Size(m MemoryItem) (size int) {
	size = IDMUS.Size(m.Id)
	size += IDMUS.Size(m.ContactId)
	size += ord.String.Size(m.Content)
	size += ord.String.Size(m.MemoryType)
	size += varint.Int.Size(int(m.Status))
	size += ord.Bool.Size(m.IsPinned)
	size += varint.Float32.Size(m.Confidence)
	size += ord.String.Size(m.ProposedBy)
	size += IDMUS.Size(m.ReviewedBy)
	size += timeMUS.Size(m.ReviewedAt)
	size += ord.String.Size(m.RejectionReason)
	size += timeMUS.Size(m.InsertedAt)
	size += timeMUS.Size(m.UpdatedAt)
	return
}

func (s memoryItemSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type memoryEmbeddingSer struct{}

func (memoryEmbeddingSer) Marshal(e MemoryEmbedding, bs []byte) (n int) {
	n = IDMUS.Marshal(e.MemoryItemId, bs)
	n += ord.String.Marshal(e.Model, bs[n:])
	n += float32SliceMUS.Marshal(e.Vector, bs[n:])
	n += varint.Int.Marshal(int(e.Status), bs[n:])
	n += ord.String.Marshal(e.Error, bs[n:])
	n += timeMUS.Marshal(e.InsertedAt, bs[n:])
	n += timeMUS.Marshal(e.UpdatedAt, bs[n:])
	return
}

func (memoryEmbeddingSer) Unmarshal(bs []byte) (e MemoryEmbedding, n int, err error) {
	var n1 int
	if e.MemoryItemId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.Model, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.Status = EmbeddingStatus(status)
	n += n1
	if e.Error, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (memoryEmbeddingSer) Size(e MemoryEmbedding) (size int) {
	size = IDMUS.Size(e.MemoryItemId)
	size += ord.String.Size(e.Model)
	size += float32SliceMUS.Size(e.Vector)
	size += varint.Int.Size(int(e.Status))
	size += ord.String.Size(e.Error)
	size += timeMUS.Size(e.InsertedAt)
	size += timeMUS.Size(e.UpdatedAt)
	return
}

func (s memoryEmbeddingSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type importJobSer struct{}

func (importJobSer) Marshal(j ImportJob, bs []byte) (n int) {
	n = IDMUS.Marshal(j.Id, bs)
	n += ord.String.Marshal(j.Filename, bs[n:])
	n += varint.Int.Marshal(int(j.Status), bs[n:])
	n += stringMapMUS.Marshal(j.Mapping, bs[n:])
	n += varint.Int.Marshal(j.Stats.Total, bs[n:])
	n += varint.Int.Marshal(j.Stats.Created, bs[n:])
	n += varint.Int.Marshal(j.Stats.Updated, bs[n:])
	n += varint.Int.Marshal(j.Stats.Skipped, bs[n:])
	n += varint.Int.Marshal(j.Stats.Errored, bs[n:])
	n += IDMUS.Marshal(j.CreatedBy, bs[n:])
	n += timeMUS.Marshal(j.InsertedAt, bs[n:])
	n += timeMUS.Marshal(j.UpdatedAt, bs[n:])
	return
}

func (importJobSer) Unmarshal(bs []byte) (j ImportJob, n int, err error) {
	var n1 int
	if j.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if j.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	j.Status = ImportStatus(status)
	n += n1
	if j.Mapping, n1, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Stats.Total, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Stats.Created, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Stats.Updated, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Stats.Skipped, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Stats.Errored, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.CreatedBy, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	j.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (importJobSer) Size(j ImportJob) (size int) {
	size = IDMUS.Size(j.Id)
	size += ord.String.Size(j.Filename)
	size += varint.Int.Size(int(j.Status))
	size += stringMapMUS.Size(j.Mapping)
	size += varint.Int.Size(j.Stats.Total)
	size += varint.Int.Size(j.Stats.Created)
	size += varint.Int.Size(j.Stats.Updated)
	size += varint.Int.Size(j.Stats.Skipped)
	size += varint.Int.Size(j.Stats.Errored)
	size += IDMUS.Size(j.CreatedBy)
	size += timeMUS.Size(j.InsertedAt)
	size += timeMUS.Size(j.UpdatedAt)
	return
}

func (s importJobSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type importRowSer struct{}

func (importRowSer) Marshal(r ImportRow, bs []byte) (n int) {
	n = IDMUS.Marshal(r.JobId, bs)
	n += varint.Int.Marshal(r.RowIndex, bs[n:])
	n += stringMapMUS.Marshal(r.Raw, bs[n:])
	n += stringMapMUS.Marshal(r.Normalized, bs[n:])
	n += varint.Int.Marshal(int(r.Status), bs[n:])
	n += varint.Int.Marshal(int(r.Action), bs[n:])
	n += varint.Int.Marshal(int(r.MatchType), bs[n:])
	n += IDMUS.Marshal(r.MatchedContactId, bs[n:])
	n += ord.String.Marshal(r.Error, bs[n:])
	return
}

func (importRowSer) Unmarshal(bs []byte) (r ImportRow, n int, err error) {
	var n1 int
	if r.JobId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if r.RowIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Raw, n1, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Normalized, n1, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	r.Status = RowStatus(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	r.Action = RowAction(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	r.MatchType = MatchType(v)
	n += n1
	if r.MatchedContactId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	r.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (importRowSer) Size(r ImportRow) (size int) {
	size = IDMUS.Size(r.JobId)
	size += varint.Int.Size(r.RowIndex)
	size += stringMapMUS.Size(r.Raw)
	size += stringMapMUS.Size(r.Normalized)
	size += varint.Int.Size(int(r.Status))
	size += varint.Int.Size(int(r.Action))
	size += varint.Int.Size(int(r.MatchType))
	size += IDMUS.Size(r.MatchedContactId)
	size += ord.String.Size(r.Error)
	return
}

func (s importRowSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type savedViewSer struct{}

func (savedViewSer) Marshal(v SavedView, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Entity, bs[n:])
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += ord.Bool.Marshal(v.Shared, bs[n:])
	n += stringMapMUS.Marshal(v.Definition, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (savedViewSer) Unmarshal(bs []byte) (v SavedView, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Entity, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Shared, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Definition, n1, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (savedViewSer) Size(v SavedView) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Entity)
	size += IDMUS.Size(v.OwnerId)
	size += ord.Bool.Size(v.Shared)
	size += stringMapMUS.Size(v.Definition)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return
}

func (s savedViewSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
