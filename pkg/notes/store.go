package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNotFound is returned when no notes match an ID.
	ErrNotFound = errors.New("notes: not found")

	// ErrAmbiguous is returned by Find when an ID prefix matches more than
	// one record.
	ErrAmbiguous = errors.New("notes: ambiguous id prefix")
)

// Key layout:
//
//	note:<uuid>                                msgpack(Notes)
//	date:<seconds, 20 digits>.<nanos, 9 digits>:<uuid>  empty, orders records by date
//
// The seconds field is Unix seconds with the sign bit flipped, so dates
// before 1970 and the zero time sort ahead of later ones.
const (
	notePrefix = "note:"
	datePrefix = "date:"
)

func noteKey(id uuid.UUID) []byte { return []byte(notePrefix + id.String()) }

func dateKey(n *Notes) []byte {
	sec := uint64(n.Date.Unix()) ^ 1<<63
	return fmt.Appendf(nil, "%s%020d.%09d:%s", datePrefix, sec, n.Date.Nanosecond(), n.ID)
}

// Options configures a Store.
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory keeps all data in memory.
	InMemory bool

	// Logger receives badger warnings and errors. Nil means slog.Default.
	Logger *slog.Logger
}

// Store persists Notes. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens or creates a Store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("notes: Options.Dir is required for on-disk mode")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{log})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("notes: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces n. A nil ID is assigned a fresh one.
func (s *Store) Put(_ context.Context, n *Notes) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	data, err := msgpack.Marshal(n)
	if err != nil {
		return fmt.Errorf("notes: encode: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		old, err := getTxn(txn, n.ID)
		switch {
		case err == nil:
			if err := txn.Delete(dateKey(old)); err != nil {
				return err
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := txn.Set(noteKey(n.ID), data); err != nil {
			return err
		}
		return txn.Set(dateKey(n), nil)
	})
}

// Get returns the notes with the given ID.
func (s *Store) Get(_ context.Context, id uuid.UUID) (*Notes, error) {
	var n *Notes
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = getTxn(txn, id)
		return err
	})
	return n, err
}

// Find resolves a full ID or a unique prefix of one, as printed by
// Notes.ShortID.
func (s *Store) Find(ctx context.Context, idOrPrefix string) (*Notes, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if id, err := uuid.Parse(idOrPrefix); err == nil {
		return s.Get(ctx, id)
	}
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	var n *Notes
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(notePrefix + idOrPrefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		var match []byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if match != nil {
				return fmt.Errorf("%w: %q", ErrAmbiguous, idOrPrefix)
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			match = v
		}
		if match == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, idOrPrefix)
		}
		n = &Notes{}
		return msgpack.Unmarshal(match, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]*Notes, error) {
	var out []*Notes
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(datePrefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		var ids []uuid.UUID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			id, err := uuid.Parse(k[strings.LastIndexByte(k, ':')+1:])
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		it.Close()

		slices.Reverse(ids)
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := getTxn(txn, id)
			if err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the notes with the given ID. Deleting a missing record
// returns ErrNotFound.
func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		n, err := getTxn(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(dateKey(n)); err != nil {
			return err
		}
		return txn.Delete(noteKey(id))
	})
}

func getTxn(txn *badger.Txn, id uuid.UUID) (*Notes, error) {
	item, err := txn.Get(noteKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	n := &Notes{}
	err = item.Value(func(v []byte) error {
		return msgpack.Unmarshal(v, n)
	})
	if err != nil {
		return nil, fmt.Errorf("notes: decode %s: %w", id, err)
	}
	return n, nil
}

// badgerLogger forwards badger warnings and errors to slog and drops the
// rest.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, v ...any) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (b badgerLogger) Warningf(f string, v ...any) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (badgerLogger) Infof(string, ...any)  {}
func (badgerLogger) Debugf(string, ...any) {}
