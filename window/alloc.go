/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package window

import "github.com/springql/springql-go/sql"

// paneStartsContaining returns, for a given rowtime, the start times (as
// Unix nanoseconds) of every pane interval that contains it under param.
//
// For TimedFixed{Length}, panes are non-overlapping: exactly one start,
// floor(t/Length)*Length.
//
// For TimedSliding{Length, Period}, a row belongs to every pane whose
// half-open interval [start, start+Length) contains it, where start ranges
// over multiples of Period. Solving k*Period <= t < k*Period+Length for
// integer k gives k in ((t-Length)/Period, t/Period].
func paneStartsContaining(param Parameter, rowtime sql.Timestamp) []int64 {
	t := rowtime.UnixNano()
	switch p := param.(type) {
	case TimedFixed:
		length := p.Length.Nanoseconds()
		start := floorDiv(t, length) * length
		return []int64{start}
	case TimedSliding:
		length := p.Length.Nanoseconds()
		period := p.Period.Nanoseconds()
		kMax := floorDiv(t, period)
		kMin := floorDiv(t-length, period) + 1
		starts := make([]int64, 0, kMax-kMin+1)
		for k := kMin; k <= kMax; k++ {
			starts = append(starts, k*period)
		}
		return starts
	default:
		return nil
	}
}

// paneEnd returns the end (exclusive) of the pane starting at startNano.
func paneEnd(param Parameter, startNano int64) int64 {
	switch p := param.(type) {
	case TimedFixed:
		return startNano + p.Length.Nanoseconds()
	case TimedSliding:
		return startNano + p.Length.Nanoseconds()
	default:
		return startNano
	}
}

// floorDiv computes floor(a/b) for a possibly-negative a, unlike Go's
// truncating integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}
