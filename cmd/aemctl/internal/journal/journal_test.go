// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package journal

import (
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kinds := []EventKind{KindProfileCreated, KindProfileActivated, KindInstanceStarted}
	for i, kind := range kinds {
		err := j.Record(Event{
			Time:     base.Add(time.Duration(i) * time.Second),
			Kind:     kind,
			EntityID: "e1",
			Summary:  string(kind),
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	events, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	// Newest first.
	if events[0].Kind != KindInstanceStarted {
		t.Errorf("events[0].Kind = %s, want instance.started", events[0].Kind)
	}
	if events[2].Kind != KindProfileCreated {
		t.Errorf("events[2].Kind = %s, want profile.created", events[2].Kind)
	}
}

func TestRecent_Limit(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		if err := j.Record(Event{Kind: KindArtifactImported, Summary: "import"}); err != nil {
			t.Fatal(err)
		}
	}

	events, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}

func TestRecent_ZeroLimit(t *testing.T) {
	j := openTestJournal(t)
	events, err := j.Recent(0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if events != nil {
		t.Errorf("expected nil, got %v", events)
	}
}

func TestRecord_StampsTime(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Record(Event{Kind: KindVersionSwitched, Summary: "java 17"}); err != nil {
		t.Fatal(err)
	}
	events, err := j.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if events[0].Time.IsZero() {
		t.Error("Record should stamp a zero Time")
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("expected error when persistent mode has no path")
	}
}
