// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	data, err := ReadResponse(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadResponse = %q, want %q", data, "hello")
	}
}
