// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package journal records an append-only audit trail of mutations and
lifecycle transitions in an embedded BadgerDB.

Every profile activation, import, instance start/stop, and version
switch appends one event. Keys are zero-padded nanosecond timestamps so
lexicographic order equals time order, which makes "most recent N" a
single reverse iteration.

BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
*/
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// EventKind classifies journal entries.
type EventKind string

const (
	KindProfileCreated   EventKind = "profile.created"
	KindProfileActivated EventKind = "profile.activated"
	KindProfileDeleted   EventKind = "profile.deleted"
	KindInstanceStarted  EventKind = "instance.started"
	KindInstanceStopped  EventKind = "instance.stopped"
	KindVersionSwitched  EventKind = "version.switched"
	KindArtifactImported EventKind = "artifact.imported"
)

// Event is one audit record.
type Event struct {
	Time     time.Time         `json:"time"`
	Kind     EventKind         `json:"kind"`
	EntityID string            `json:"entityId,omitempty"`
	Summary  string            `json:"summary"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Config holds journal storage configuration.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps the journal in RAM only. Useful for testing.
	InMemory bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
}

// Journal is an append-only event log.
//
// # Thread Safety
//
// Journal is safe for concurrent use; BadgerDB transactions provide
// the isolation.
type Journal struct {
	db  *badger.DB
	seq atomic.Uint64
}

// Open opens (or creates) the journal database. Callers must Close it.
func Open(cfg Config) (*Journal, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("journal path is required for persistent mode")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends an event. Time is stamped here when the caller left it
// zero. Failures are returned but callers generally log and continue;
// the journal must never block a user-facing operation.
func (j *Journal) Record(event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding journal event: %w", err)
	}
	// Sequence suffix disambiguates events recorded in the same
	// nanosecond.
	key := fmt.Sprintf("%020d-%06d", event.Time.UnixNano(), j.seq.Add(1))

	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	events := make([]Event, 0, limit)

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts from the largest possible key.
		it.Seek([]byte("\xff"))
		for ; it.Valid() && len(events) < limit; it.Next() {
			var event Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return events, nil
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
