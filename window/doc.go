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

/*
Package window implements event-time windowed grouped aggregation.

# Window shapes

Two shapes are supported, chosen by the SELECT statement's windowing clause:

  - TimedSliding{Length, Period}: every Period a new pane opens; a row
    belongs to every open pane whose interval contains its rowtime.
  - TimedFixed{Length}: non-overlapping panes of duration Length.

Both carry an AllowedDelay grace period: a tuple is accepted as long as its
rowtime is not behind the current watermark, even if it is behind the
maximum rowtime seen so far.

# Watermarks and pane closing

Engine tracks one watermark per pump, advanced on every dispatched tuple to
max(current, rowtime-AllowedDelay). Once the watermark passes a pane's end,
that pane is closed: finalized per group and removed. A closed pane can
never be reopened; a tuple that arrives for it afterwards is dropped
silently. This is what bounds memory under an unbounded stream -- panes
accumulate only a running reduction per group, never the raw rows.
*/
package window
