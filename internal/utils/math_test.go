/*
Copyright © 2023 mcarilli

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(2))
	assert.True(t, IsPowerOfTwo(1024))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(-8))
	assert.False(t, IsPowerOfTwo(6))
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, NextPowerOfTwo(0))
	assert.Equal(t, 1, NextPowerOfTwo(1))
	assert.Equal(t, 8, NextPowerOfTwo(5))
	assert.Equal(t, 8, NextPowerOfTwo(8))
	assert.Equal(t, 16, NextPowerOfTwo(9))
}

func TestLog2(t *testing.T) {
	assert.Equal(t, uint32(0), Log2(1))
	assert.Equal(t, uint32(3), Log2(8))
	assert.Equal(t, uint32(4), Log2(16))
}

func TestParallelizeCoversAllIterations(t *testing.T) {
	const n = 1000
	var hits [n]int32
	Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	for i := range hits {
		assert.Equal(t, int32(1), hits[i], "iteration %d", i)
	}
}

func TestParallelizeWithFewIterations(t *testing.T) {
	var count int32
	Parallelize(3, func(start, end int) {
		atomic.AddInt32(&count, int32(end-start))
	}, 8)
	assert.Equal(t, int32(3), count)
}
