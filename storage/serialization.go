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


package storage

import (
	"github.com/poiesic/corpus/core"
)

// MarshalPoint serializes a Point to bytes.
func MarshalPoint(point *core.Point) []byte {
	buf := make([]byte, core.PointMUS.Size(*point))
	core.PointMUS.Marshal(*point, buf)
	return buf
}

// UnmarshalPoint deserializes a Point from bytes.
func UnmarshalPoint(data []byte) (*core.Point, error) {
	point, _, err := core.PointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &point, nil
}
