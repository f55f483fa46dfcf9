// Copyright 2025 Complia
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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// A floored-to-zero audit is the worst legitimate outcome; its score
// must survive persistence rather than vanish as an empty field.
func TestMetadataZeroScorePersists(t *testing.T) {
	meta := Metadata{
		OwnerID:     "u1",
		Kind:        KindGenerated,
		CompanyName: "Acme",
		Score:       0,
	}

	raw, err := bson.Marshal(meta)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	score, ok := doc["score"]
	assert.True(t, ok, "score field missing from bson document")
	assert.EqualValues(t, 0, score)

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	var jsonDoc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &jsonDoc))
	_, ok = jsonDoc["score"]
	assert.True(t, ok, "score field missing from json document")
}
