// Package qdrant implements storage.VectorStore against a Qdrant server
// over its REST API. The collection carries a named dense vector and a
// named sparse vector per point, with keyword payload indexes on the fields
// the pipeline filters by.
package qdrant
