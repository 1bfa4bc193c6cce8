package qdrant

import "github.com/poiesic/corpus/core"

// Wire types for the Qdrant REST API. Only the fields the store touches.

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors       map[string]vectorParams `json:"vectors"`
	SparseVectors map[string]struct{}     `json:"sparse_vectors"`
}

type createIndexRequest struct {
	FieldName   string `json:"field_name"`
	FieldSchema string `json:"field_schema"`
}

type sparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

type pointVectors struct {
	Dense  []float32    `json:"dense"`
	Sparse sparseVector `json:"sparse"`
}

type point struct {
	ID      string       `json:"id"`
	Vector  pointVectors `json:"vector"`
	Payload core.Payload `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type matchCondition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type filter struct {
	Must []matchCondition `json:"must,omitempty"`
}

type scrollRequest struct {
	Filter      *filter `json:"filter,omitempty"`
	Limit       int     `json:"limit"`
	Offset      string  `json:"offset,omitempty"`
	WithPayload bool    `json:"with_payload"`
	WithVector  bool    `json:"with_vector"`
}

type scrolledPoint struct {
	ID      string       `json:"id"`
	Payload core.Payload `json:"payload"`
	Vector  struct {
		Dense  []float32     `json:"dense"`
		Sparse *sparseVector `json:"sparse"`
	} `json:"vector"`
}

type scrollResponse struct {
	Result struct {
		Points         []scrolledPoint `json:"points"`
		NextPageOffset string          `json:"next_page_offset"`
	} `json:"result"`
}

type setPayloadRequest struct {
	Payload map[string]any `json:"payload"`
	Points  []string       `json:"points"`
}

type deletePointsRequest struct {
	Points []string `json:"points,omitempty"`
	Filter *filter  `json:"filter,omitempty"`
}

type countRequest struct {
	Filter *filter `json:"filter,omitempty"`
	Exact  bool    `json:"exact"`
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}
