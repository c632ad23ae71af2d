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

package springqlerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ForeignIo, cause, "connecting to %s", "localhost:1234")

	kind, ok := KindOf(err)
	if !ok || kind != ForeignIo {
		t.Fatalf("expected ForeignIo, got %v ok=%v", kind, ok)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected Wrap to preserve the cause chain for errors.Is")
	}
}

// KindOf sees through an arbitrary fmt.Errorf %w wrapper layered on top of
// a springqlerr.Error.
func TestKindOfThroughExternalWrap(t *testing.T) {
	inner := New(Sql, "pump %q would create a cycle", "p1")
	outer := fmt.Errorf("applying DDL: %w", inner)

	kind, ok := KindOf(outer)
	if !ok || kind != Sql {
		t.Fatalf("expected Sql, got %v ok=%v", kind, ok)
	}
}

func TestKindOfNonSpringqlError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain error")); ok {
		t.Fatal("expected KindOf to report false for a non-springqlerr error")
	}
}

func TestIsRecoverableOnlyForForeignInputTimeout(t *testing.T) {
	if !IsRecoverable(New(ForeignInputTimeout, "no row within timeout")) {
		t.Fatal("expected ForeignInputTimeout to be recoverable")
	}
	if IsRecoverable(New(ForeignIo, "connection reset")) {
		t.Fatal("expected ForeignIo to not be recoverable")
	}
	if IsRecoverable(errors.New("plain error")) {
		t.Fatal("expected a non-springqlerr error to not be recoverable")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InvalidFormat, cause, "bad timestamp %q", "not-a-date")
	got := err.Error()
	want := "InvalidFormat: bad timestamp \"not-a-date\": boom"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
