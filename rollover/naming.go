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


package rollover

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// GenerationName builds the deterministic index name for one generation:
// the alias, the injected pipeline version, and a creation timestamp. The
// version distinguishes generations across releases; the timestamp
// distinguishes repeated runs within one release.
func GenerationName(alias, version string, createdAt time.Time) string {
	return fmt.Sprintf("%s%s-%d", GenerationPrefix(alias), version, createdAt.Unix())
}

// GenerationPrefix returns the name prefix shared by every generation of an
// alias. Used to enumerate generations on the cluster.
func GenerationPrefix(alias string) string {
	return alias + "-v"
}

// generationTime extracts the creation timestamp embedded in a generation
// name. Names without a parseable timestamp report zero and sort oldest.
func generationTime(name string) int64 {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return 0
	}
	ts, err := strconv.ParseInt(name[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// SortGenerations orders generation names oldest first by their embedded
// creation timestamp.
func SortGenerations(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		ta, tb := generationTime(a), generationTime(b)
		if ta != tb {
			if ta < tb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
}
