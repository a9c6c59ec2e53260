// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func testEpoch() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestFakeNow(t *testing.T) {
	fake := Fake(testEpoch())
	if !fake.Now().Equal(testEpoch()) {
		t.Errorf("Now() = %v, want %v", fake.Now(), testEpoch())
	}

	fake.Advance(3 * time.Second)
	want := testEpoch().Add(3 * time.Second)
	if !fake.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfter(t *testing.T) {
	t.Run("fires when advanced past deadline", func(t *testing.T) {
		fake := Fake(testEpoch())
		ch := fake.After(5 * time.Second)

		select {
		case <-ch:
			t.Fatal("After fired before Advance")
		default:
		}

		fake.Advance(5 * time.Second)
		select {
		case <-ch:
		default:
			t.Fatal("After did not fire after Advance")
		}
	})

	t.Run("non-positive duration fires immediately", func(t *testing.T) {
		fake := Fake(testEpoch())
		select {
		case <-fake.After(0):
		default:
			t.Fatal("After(0) did not fire immediately")
		}
	})
}

func TestFakeTicker(t *testing.T) {
	t.Run("fires once per interval", func(t *testing.T) {
		fake := Fake(testEpoch())
		ticker := fake.NewTicker(time.Second)
		defer ticker.Stop()

		fake.Advance(time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatal("ticker did not fire after one interval")
		}

		fake.Advance(time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatal("ticker did not fire after second interval")
		}
	})

	t.Run("stopped ticker does not fire", func(t *testing.T) {
		fake := Fake(testEpoch())
		ticker := fake.NewTicker(time.Second)
		ticker.Stop()

		fake.Advance(5 * time.Second)
		select {
		case <-ticker.C:
			t.Fatal("stopped ticker fired")
		default:
		}
	})

	t.Run("non-positive interval panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("NewTicker(0) did not panic")
			}
		}()
		Fake(testEpoch()).NewTicker(0)
	})
}

func TestFakeSleep(t *testing.T) {
	fake := Fake(testEpoch())
	done := make(chan struct{})

	go func() {
		fake.Sleep(2 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(2 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestWaitForTimers(t *testing.T) {
	fake := Fake(testEpoch())

	go fake.After(time.Second)
	go fake.After(time.Second)

	fake.WaitForTimers(2)
	if got := fake.PendingCount(); got != 2 {
		t.Errorf("PendingCount() = %d, want 2", got)
	}
}
