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

// IsPrime returns true if n is prime. Trial division by odd factors is
// plenty for table capacities.
func IsPrime(n int) bool {
	if n == 2 || n == 3 {
		return true
	}
	if n < 2 || n%2 == 0 {
		return false
	}
	for f := 3; f*f <= n; f += 2 {
		if n%f == 0 {
			return false
		}
	}
	return true
}

// NextPrime returns the smallest odd prime >= n. Even values are bumped to
// the next odd value before searching, so NextPrime(2) is 3, as is any n
// below 3.
func NextPrime(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		n++
	}
	for !IsPrime(n) {
		n += 2
	}
	return n
}

// primeCapacity coerces n to a prime, leaving n alone if it already is one.
func primeCapacity(n int) int {
	if IsPrime(n) {
		return n
	}
	return NextPrime(n)
}
