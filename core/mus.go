package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for local storage. Hand-composed from mus-go primitives;
// kept next to the types so field changes and serializers move together.
var (
	denseMUS   = ord.NewSliceSer[float32](raw.Float32)
	indicesMUS = ord.NewSliceSer[uint32](varint.Uint32)
	valuesMUS  = ord.NewSliceSer[float32](raw.Float32)
	linkedMUS  = ord.NewSliceSer[LinkedFile](LinkedFileMUS)

	SparseVectorMUS = sparseVectorSer{}
	LinkedFileMUS   = linkedFileSer{}
	PayloadMUS      = payloadSer{}
	PointMUS        = pointSer{}
)

var _ mus.Serializer[Point] = PointMUS

type sparseVectorSer struct{}

func (sparseVectorSer) Marshal(v SparseVector, bs []byte) (n int) {
	n = indicesMUS.Marshal(v.Indices, bs)
	n += valuesMUS.Marshal(v.Values, bs[n:])
	return n
}

func (sparseVectorSer) Unmarshal(bs []byte) (v SparseVector, n int, err error) {
	v.Indices, n, err = indicesMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Values, n1, err = valuesMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (sparseVectorSer) Size(v SparseVector) (size int) {
	return indicesMUS.Size(v.Indices) + valuesMUS.Size(v.Values)
}

func (sparseVectorSer) Skip(bs []byte) (n int, err error) {
	n, err = indicesMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = valuesMUS.Skip(bs[n:])
	n += n1
	return
}

type linkedFileSer struct{}

func (linkedFileSer) Marshal(f LinkedFile, bs []byte) (n int) {
	n = ord.String.Marshal(f.Library, bs)
	n += ord.String.Marshal(f.Version, bs[n:])
	n += ord.String.Marshal(f.FilePath, bs[n:])
	n += ord.String.Marshal(f.Filename, bs[n:])
	return n
}

func (linkedFileSer) Unmarshal(bs []byte) (f LinkedFile, n int, err error) {
	var n1 int
	f.Library, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	f.Version, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (linkedFileSer) Size(f LinkedFile) (size int) {
	size = ord.String.Size(f.Library)
	size += ord.String.Size(f.Version)
	size += ord.String.Size(f.FilePath)
	size += ord.String.Size(f.Filename)
	return size
}

func (linkedFileSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type payloadSer struct{}

func (payloadSer) Marshal(p Payload, bs []byte) (n int) {
	n = ord.String.Marshal(p.Content, bs)
	n += ord.String.Marshal(p.Library, bs[n:])
	n += ord.String.Marshal(p.Version, bs[n:])
	n += ord.String.Marshal(p.Title, bs[n:])
	n += ord.String.Marshal(p.FilePath, bs[n:])
	n += varint.Int.Marshal(p.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(p.TotalChunks, bs[n:])
	n += ord.String.Marshal(p.ContentHash, bs[n:])
	n += linkedMUS.Marshal(p.LinkedFiles, bs[n:])
	return n
}

func (payloadSer) Unmarshal(bs []byte) (p Payload, n int, err error) {
	var n1 int
	p.Content, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	p.Library, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Version, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.ContentHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.LinkedFiles, n1, err = linkedMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (payloadSer) Size(p Payload) (size int) {
	size = ord.String.Size(p.Content)
	size += ord.String.Size(p.Library)
	size += ord.String.Size(p.Version)
	size += ord.String.Size(p.Title)
	size += ord.String.Size(p.FilePath)
	size += varint.Int.Size(p.ChunkIndex)
	size += varint.Int.Size(p.TotalChunks)
	size += ord.String.Size(p.ContentHash)
	size += linkedMUS.Size(p.LinkedFiles)
	return size
}

func (payloadSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 5; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = linkedMUS.Skip(bs[n:])
	n += n1
	return
}

type pointSer struct{}

func (pointSer) Marshal(p Point, bs []byte) (n int) {
	n = ord.String.Marshal(p.ID, bs)
	n += denseMUS.Marshal(p.Dense, bs[n:])
	n += SparseVectorMUS.Marshal(p.Sparse, bs[n:])
	n += PayloadMUS.Marshal(p.Payload, bs[n:])
	return n
}

func (pointSer) Unmarshal(bs []byte) (p Point, n int, err error) {
	var n1 int
	p.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	p.Dense, n1, err = denseMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Sparse, n1, err = SparseVectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Payload, n1, err = PayloadMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (pointSer) Size(p Point) (size int) {
	size = ord.String.Size(p.ID)
	size += denseMUS.Size(p.Dense)
	size += SparseVectorMUS.Size(p.Sparse)
	size += PayloadMUS.Size(p.Payload)
	return size
}

func (pointSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = denseMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SparseVectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = PayloadMUS.Skip(bs[n:])
	n += n1
	return
}
