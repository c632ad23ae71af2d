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

package expr

// ValueExprLabel is an opaque handle into a Resolver's value-expression
// table. Labels are stable for the lifetime of the pipeline snapshot that
// issued them.
type ValueExprLabel uint16

// AggrExprLabel is an opaque handle into a Resolver's aggregate-expression
// table.
type AggrExprLabel uint16

// labelGenerator issues monotonically increasing, namespaced labels -- one
// 16-bit counter per namespace, mirroring the one-generator-per-pipeline
// design of the original ExprLabelGenerator.
type labelGenerator struct {
	nextValue uint16
	nextAggr  uint16
}

func (g *labelGenerator) value() ValueExprLabel {
	l := ValueExprLabel(g.nextValue)
	g.nextValue++
	return l
}

func (g *labelGenerator) aggr() AggrExprLabel {
	l := AggrExprLabel(g.nextAggr)
	g.nextAggr++
	return l
}
