// Copyright 2024 The Cockroach Authors
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

package hashmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringSum(t *testing.T) {
	require.EqualValues(t, 0, StringSum(""))
	require.EqualValues(t, 'a'+'b'+'c', StringSum("abc"))
	// Order independent.
	require.Equal(t, StringSum("listen"), StringSum("silent"))
}

func TestStringPositional(t *testing.T) {
	require.EqualValues(t, 0, StringPositional(""))
	require.EqualValues(t, 1*'a'+2*'b'+3*'c', StringPositional("abc"))
	require.NotEqual(t, StringPositional("listen"), StringPositional("silent"))
}

func TestXXHash(t *testing.T) {
	require.Equal(t, XXHash("key1"), XXHash("key1"))
	require.NotEqual(t, XXHash("key1"), XXHash("key2"))
}
