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

import (
	"time"

	"github.com/springql/springql-go/sql"
)

// watermark is the maximum rowtime ever observed, minus allowedDelay. It is
// advanced synchronously by dispatch_aggregate -- one watermark per pump's
// Engine, not a background ticker, so its value is a pure function of the
// dispatch sequence and therefore reproducible in tests.
type watermark struct {
	allowedDelay time.Duration
	current      sql.Timestamp
}

func newWatermark(allowedDelay time.Duration) *watermark {
	return &watermark{allowedDelay: allowedDelay, current: sql.MinTimestamp}
}

// advance updates the watermark from a newly observed rowtime: current =
// max(current, rowtime - allowedDelay). Never regresses.
func (w *watermark) advance(rowtime sql.Timestamp) {
	candidate := rowtime.Add(-w.allowedDelay)
	if candidate.After(w.current) {
		w.current = candidate
	}
}

// value returns the current watermark.
func (w *watermark) value() sql.Timestamp { return w.current }

// isLate reports whether rowtime is strictly before the current watermark --
// such a tuple is dropped per the late-data invariant.
func (w *watermark) isLate(rowtime sql.Timestamp) bool {
	return rowtime.Before(w.current)
}
