// Copyright 2025 Poiesic Systems
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


package bm25

import (
	"context"
	"encoding/binary"
	"sort"
	"strings"
	"unicode"

	"github.com/go-crypt/x/blake2b"

	"github.com/poiesic/corpus/core"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls length
// normalization against avgDocLen.
const (
	defaultK1        = 1.2
	defaultB         = 0.75
	defaultAvgDocLen = 256.0
)

// Encoder produces BM25-weighted sparse vectors. The zero value is not
// usable; create one with NewEncoder.
type Encoder struct {
	k1        float64
	b         float64
	avgDocLen float64
}

// NewEncoder creates an encoder with standard BM25 parameters.
func NewEncoder() *Encoder {
	return &Encoder{k1: defaultK1, b: defaultB, avgDocLen: defaultAvgDocLen}
}

// EmbedSparse encodes each text into a sparse vector. Indices within each
// vector are sorted ascending and unique.
func (e *Encoder) EmbedSparse(_ context.Context, texts []string) ([]core.SparseVector, error) {
	out := make([]core.SparseVector, len(texts))
	for i, text := range texts {
		out[i] = e.encode(text)
	}
	return out, nil
}

func (e *Encoder) encode(text string) core.SparseVector {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return core.SparseVector{}
	}

	counts := make(map[uint32]int, len(tokens))
	for _, tok := range tokens {
		counts[tokenIndex(tok)]++
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(a, b int) bool { return indices[a] < indices[b] })

	docLen := float64(len(tokens))
	norm := e.k1 * (1 - e.b + e.b*docLen/e.avgDocLen)

	values := make([]float32, len(indices))
	for i, idx := range indices {
		tf := float64(counts[idx])
		values[i] = float32(tf * (e.k1 + 1) / (tf + norm))
	}
	return core.SparseVector{Indices: indices, Values: values}
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenIndex hashes a token to a stable sparse dimension.
func tokenIndex(token string) uint32 {
	h, _ := blake2b.New(4, nil)
	h.Write([]byte(token))
	return binary.LittleEndian.Uint32(h.Sum(nil))
}
