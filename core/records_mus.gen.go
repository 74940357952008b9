// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	mapX7eOnTkl6QGOcgNUJqQVewΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	slice54lObZ4MΔBxbiIr8ilyUKQΞΞ = ord.NewSliceSer[string](ord.String)
	sliceE9veZ33NzypGJjO9svuYMQΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var SourceKindMUS = sourceKindMUS{}

type sourceKindMUS struct{}

func (s sourceKindMUS) Marshal(v SourceKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s sourceKindMUS) Unmarshal(bs []byte) (v SourceKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = SourceKind(tmp)
	return
}

func (s sourceKindMUS) Size(v SourceKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s sourceKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ContentTypeMUS = contentTypeMUS{}

type contentTypeMUS struct{}

func (s contentTypeMUS) Marshal(v ContentType, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s contentTypeMUS) Unmarshal(bs []byte) (v ContentType, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ContentType(tmp)
	return
}

func (s contentTypeMUS) Size(v ContentType) (size int) {
	return varint.Int.Size(int(v))
}

func (s contentTypeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var MatcherKindMUS = matcherKindMUS{}

type matcherKindMUS struct{}

func (s matcherKindMUS) Marshal(v MatcherKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s matcherKindMUS) Unmarshal(bs []byte) (v MatcherKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = MatcherKind(tmp)
	return
}

func (s matcherKindMUS) Size(v MatcherKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s matcherKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ContentChunkMUS = contentChunkMUS{}

type contentChunkMUS struct{}

func (s contentChunkMUS) Marshal(v ContentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.System, bs[n:])
	n += SourceKindMUS.Marshal(v.SourceKind, bs[n:])
	n += ContentTypeMUS.Marshal(v.ContentType, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += varint.Int.Marshal(v.PageNumber, bs[n:])
	n += slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Marshal(v.SectionPath, bs[n:])
	n += mapX7eOnTkl6QGOcgNUJqQVewΞΞ.Marshal(v.Metadata, bs[n:])
	n += sliceE9veZ33NzypGJjO9svuYMQΞΞ.Marshal(v.Vector, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s contentChunkMUS) Unmarshal(bs []byte) (v ContentChunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.System, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceKind, n1, err = SourceKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentType, n1, err = ContentTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionPath, n1, err = slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = mapX7eOnTkl6QGOcgNUJqQVewΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = sliceE9veZ33NzypGJjO9svuYMQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s contentChunkMUS) Size(v ContentChunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.System)
	size += SourceKindMUS.Size(v.SourceKind)
	size += ContentTypeMUS.Size(v.ContentType)
	size += varint.Float64.Size(v.Confidence)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Content)
	size += varint.Int.Size(v.PageNumber)
	size += slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Size(v.SectionPath)
	size += mapX7eOnTkl6QGOcgNUJqQVewΞΞ.Size(v.Metadata)
	size += sliceE9veZ33NzypGJjO9svuYMQΞΞ.Size(v.Vector)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s contentChunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SourceKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ContentTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = mapX7eOnTkl6QGOcgNUJqQVewΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceE9veZ33NzypGJjO9svuYMQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var PatternEntryMUS = patternEntryMUS{}

type patternEntryMUS struct{}

func (s patternEntryMUS) Marshal(v PatternEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.System, bs[n:])
	n += MatcherKindMUS.Marshal(v.Kind, bs[n:])
	n += slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Marshal(v.Keywords, bs[n:])
	n += varint.Float64.Marshal(v.Threshold, bs[n:])
	n += ContentTypeMUS.Marshal(v.ContentType, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += varint.Uint64.Marshal(v.UseCount, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s patternEntryMUS) Unmarshal(bs []byte) (v PatternEntry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.System, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = MatcherKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Keywords, n1, err = slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Threshold, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentType, n1, err = ContentTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UseCount, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s patternEntryMUS) Size(v PatternEntry) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.System)
	size += MatcherKindMUS.Size(v.Kind)
	size += slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Size(v.Keywords)
	size += varint.Float64.Size(v.Threshold)
	size += ContentTypeMUS.Size(v.ContentType)
	size += varint.Float64.Size(v.Confidence)
	size += varint.Uint64.Size(v.UseCount)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s patternEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = MatcherKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice54lObZ4MΔBxbiIr8ilyUKQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ContentTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
