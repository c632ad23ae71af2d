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

// Package window implements event-time windowed grouped aggregation:
// watermarks, lazily-allocated panes, and a dispatch_aggregate algorithm that
// merges each incoming tuple into every open pane its rowtime belongs to and
// closes (emits and drops) panes the watermark has passed.
package window

import (
	"time"

	"github.com/springql/springql-go/expr"
)

// Parameter is the closed set of window shapes SELECT ... WINDOW supports.
type Parameter interface {
	isParameter()
	// AllowedDelay is the grace period granted to late data before a pane's
	// panes close -- shared by both window shapes.
	AllowedDelay() time.Duration
}

// TimedSliding opens a new pane of duration Length every Period; a row with
// rowtime t belongs to every pane whose half-open interval [start, start+Length)
// contains t.
type TimedSliding struct {
	Length       time.Duration
	Period       time.Duration
	Delay        time.Duration
}

func (TimedSliding) isParameter() {}

// AllowedDelay implements Parameter.
func (p TimedSliding) AllowedDelay() time.Duration { return p.Delay }

// TimedFixed opens non-overlapping panes [k*Length, (k+1)*Length).
type TimedFixed struct {
	Length time.Duration
	Delay  time.Duration
}

func (TimedFixed) isParameter() {}

// AllowedDelay implements Parameter.
func (p TimedFixed) AllowedDelay() time.Duration { return p.Delay }

// OperationParameter is the closed set of per-pane operations. Currently
// only grouped aggregation is supported (joins are future work, per spec).
type OperationParameter struct {
	Aggr    expr.AggrExprLabel
	GroupBy expr.ValueExprLabel
}
