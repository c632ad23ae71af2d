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

// Package sql defines the closed set of typed SQL scalars that flow through
// a pipeline, plus the nanosecond-resolution Timestamp used both as a column
// value and as rowtime.
package sql

import (
	"fmt"

	"github.com/spf13/cast"
)

// Type names the closed set of SQL scalar kinds a Value can hold.
type Type int

const (
	// TypeNull is the type of the Null value. A Null value carries no other type.
	TypeNull Type = iota
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeText
	TypeTimestamp
	TypeBoolean
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// isNumeric reports whether t participates in SQL numeric promotion.
func (t Type) isNumeric() bool {
	switch t {
	case TypeSmallInt, TypeInteger, TypeBigInt, TypeFloat:
		return true
	default:
		return false
	}
}

// numericRank orders the numeric types for widening: the wider type wins.
func (t Type) numericRank() int {
	switch t {
	case TypeSmallInt:
		return 0
	case TypeInteger:
		return 1
	case TypeBigInt:
		return 2
	case TypeFloat:
		return 3
	default:
		return -1
	}
}

// Value is a closed-set SQL scalar: either Null or one of the non-null
// variants. The zero Value is Null.
type Value struct {
	typ Type
	// payload holds the Go representation for the non-null variants:
	// int16, int32, int64, float32, string, Timestamp, bool.
	payload any
}

// Null is the SQL NULL value.
var Null = Value{typ: TypeNull}

func NewSmallInt(v int16) Value    { return Value{typ: TypeSmallInt, payload: v} }
func NewInteger(v int32) Value     { return Value{typ: TypeInteger, payload: v} }
func NewBigInt(v int64) Value      { return Value{typ: TypeBigInt, payload: v} }
func NewFloat(v float32) Value     { return Value{typ: TypeFloat, payload: v} }
func NewText(v string) Value       { return Value{typ: TypeText, payload: v} }
func NewBoolean(v bool) Value      { return Value{typ: TypeBoolean, payload: v} }
func NewTimestamp(v Timestamp) Value { return Value{typ: TypeTimestamp, payload: v} }

// Type returns the value's scalar type.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// AsFloat64 widens any numeric variant to float64. It errors on Null or
// non-numeric types; callers that need SQL-null-propagation semantics should
// check IsNull first.
func (v Value) AsFloat64() (float64, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("sql: NULL has no numeric value")
	}
	if !v.typ.isNumeric() {
		return 0, fmt.Errorf("sql: %s is not numeric", v.typ)
	}
	return cast.ToFloat64E(v.payload)
}

// AsBigInt widens any numeric variant to int64, truncating a Float.
func (v Value) AsBigInt() (int64, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("sql: NULL has no numeric value")
	}
	if !v.typ.isNumeric() {
		return 0, fmt.Errorf("sql: %s is not numeric", v.typ)
	}
	return cast.ToInt64E(v.payload)
}

// AsText returns the Text payload.
func (v Value) AsText() (string, error) {
	if v.typ != TypeText {
		return "", fmt.Errorf("sql: %s is not TEXT", v.typ)
	}
	return v.payload.(string), nil
}

// AsBoolean returns the Boolean payload.
func (v Value) AsBoolean() (bool, error) {
	if v.typ != TypeBoolean {
		return false, fmt.Errorf("sql: %s is not BOOLEAN", v.typ)
	}
	return v.payload.(bool), nil
}

// AsTimestamp returns the Timestamp payload.
func (v Value) AsTimestamp() (Timestamp, error) {
	if v.typ != TypeTimestamp {
		return Timestamp{}, fmt.Errorf("sql: %s is not TIMESTAMP", v.typ)
	}
	return v.payload.(Timestamp), nil
}

// Interface returns the value's Go representation for non-null values
// (int16/int32/int64/float32/string/bool/Timestamp), for callers that hand
// it to a generic encoder such as encoding/json. Null's representation is
// the zero value (nil interface{}); callers should check IsNull first.
func (v Value) Interface() interface{} {
	if v.typ == TypeTimestamp {
		ts, _ := v.AsTimestamp()
		return ts.Format()
	}
	return v.payload
}

// GroupKey renders a value into a string suitable for use as a map key when
// grouping rows by this value (equality of GroupKey implies SQL value
// equality for the closed scalar set).
func (v Value) GroupKey() string {
	if v.IsNull() {
		return "\x00NULL"
	}
	switch v.typ {
	case TypeTimestamp:
		ts, _ := v.AsTimestamp()
		return ts.Format()
	default:
		return fmt.Sprintf("%v", v.payload)
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.typ {
	case TypeTimestamp:
		ts, _ := v.AsTimestamp()
		return ts.Format()
	default:
		return fmt.Sprintf("%v", v.payload)
	}
}

// Equal implements value-based equality. Null compared to anything
// (including Null) is not handled here -- three-valued comparison logic
// belongs to the boolean-expression evaluator, which must special-case Null
// before calling Equal.
func (v Value) Equal(o Value) (bool, error) {
	if v.typ != o.typ {
		if v.typ.isNumeric() && o.typ.isNumeric() {
			a, err := v.AsFloat64()
			if err != nil {
				return false, err
			}
			b, err := o.AsFloat64()
			if err != nil {
				return false, err
			}
			return a == b, nil
		}
		return false, fmt.Errorf("sql: cannot compare %s with %s", v.typ, o.typ)
	}
	switch v.typ {
	case TypeNull:
		return true, nil
	case TypeTimestamp:
		a, _ := v.AsTimestamp()
		b, _ := o.AsTimestamp()
		return a.Equal(b), nil
	default:
		return v.payload == o.payload, nil
	}
}

// Compare implements SQL total order for comparable (non-Null) types,
// returning -1/0/1. Callers must exclude Null beforehand.
func (v Value) Compare(o Value) (int, error) {
	if v.IsNull() || o.IsNull() {
		return 0, fmt.Errorf("sql: cannot order NULL")
	}
	if v.typ.isNumeric() && o.typ.isNumeric() {
		a, err := v.AsFloat64()
		if err != nil {
			return 0, err
		}
		b, err := o.AsFloat64()
		if err != nil {
			return 0, err
		}
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if v.typ == TypeTimestamp && o.typ == TypeTimestamp {
		a, _ := v.AsTimestamp()
		b, _ := o.AsTimestamp()
		switch {
		case a.Before(b):
			return -1, nil
		case b.Before(a):
			return 1, nil
		default:
			return 0, nil
		}
	}
	if v.typ == TypeText && o.typ == TypeText {
		a, _ := v.AsText()
		b, _ := o.AsText()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("sql: %s and %s are not comparable", v.typ, o.typ)
}

// widenNumericType returns the wider of two numeric types, per SQL promotion.
func widenNumericType(a, b Type) Type {
	if a.numericRank() >= b.numericRank() {
		return a
	}
	return b
}

// Add performs SQL numeric addition with promotion to the wider operand
// type. Null propagates: if either operand is Null, the result is Null.
func Add(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x + y }) }

// Sub performs SQL numeric subtraction with promotion.
func Sub(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x - y }) }

// Mul performs SQL numeric multiplication with promotion.
func Mul(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x * y }) }

// Div performs SQL numeric division with promotion. Division by zero is an
// error, not a Null -- SpringQL has no IEEE-infinity semantics for SqlValue.
func Div(a, b Value) (Value, error) {
	if !a.IsNull() && !b.IsNull() {
		bf, err := b.AsFloat64()
		if err == nil && bf == 0 {
			return Null, fmt.Errorf("sql: division by zero")
		}
	}
	return arith(a, b, func(x, y float64) float64 { return x / y })
}

func arith(a, b Value, op func(x, y float64) float64) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return Null, nil
	}
	if !a.typ.isNumeric() || !b.typ.isNumeric() {
		return Null, fmt.Errorf("sql: arithmetic requires numeric operands, got %s and %s", a.typ, b.typ)
	}
	af, err := a.AsFloat64()
	if err != nil {
		return Null, err
	}
	bf, err := b.AsFloat64()
	if err != nil {
		return Null, err
	}
	result := op(af, bf)
	switch widenNumericType(a.typ, b.typ) {
	case TypeSmallInt:
		return NewSmallInt(int16(result)), nil
	case TypeInteger:
		return NewInteger(int32(result)), nil
	case TypeBigInt:
		return NewBigInt(int64(result)), nil
	default:
		return NewFloat(float32(result)), nil
	}
}

// Neg implements the unary minus UnaryOperator. Null propagates to Null.
func Neg(a Value) (Value, error) {
	if a.IsNull() {
		return Null, nil
	}
	if !a.typ.isNumeric() {
		return Null, fmt.Errorf("sql: unary minus requires a numeric operand, got %s", a.typ)
	}
	f, err := a.AsFloat64()
	if err != nil {
		return Null, err
	}
	switch a.typ {
	case TypeSmallInt:
		return NewSmallInt(int16(-f)), nil
	case TypeInteger:
		return NewInteger(int32(-f)), nil
	case TypeBigInt:
		return NewBigInt(int64(-f)), nil
	default:
		return NewFloat(float32(-f)), nil
	}
}
