// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/go-crypt/x/blake2b"
)

const entryPrefix = "failure/"

// BadgerJournal stores failed writes in a local BadgerDB database.
// Entries are stored as JSON so they stay greppable and can be replayed by
// hand against the cluster.
type BadgerJournal struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Journal = (*BadgerJournal)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a journal at the specified directory, creating it if needed.
// With inMemory set, nothing touches disk; used in tests.
func Open(filePath string, inMemory bool) (*BadgerJournal, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerJournal{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// entryKey builds the store key for an entry: a fixed prefix plus a 64-bit
// BLAKE2b hash of the target index and document id. Repeated failures of the
// same document overwrite each other instead of piling up.
func entryKey(index, id string) []byte {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(index))
	h.Write([]byte{0})
	h.Write([]byte(id))
	sum := h.Sum(nil)

	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.LittleEndian.PutUint64(key[len(entryPrefix):], binary.LittleEndian.Uint64(sum))
	return key
}

// Append records one failed write, replacing any earlier failure of the same
// document.
func (j *BadgerJournal) Append(ctx context.Context, entry *Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	return j.db.Update(func(tx *badger.Txn) error {
		return tx.Set(entryKey(entry.Index, entry.ID), value)
	})
}

// ForEach visits every recorded failure.
func (j *BadgerJournal) ForEach(ctx context.Context, fn func(*Entry) error) error {
	return j.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var entry Entry
			err := iter.Item().Value(func(val []byte) error {
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := fn(&entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (j *BadgerJournal) Close() error {
	return j.db.Close()
}
