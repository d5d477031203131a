package history

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"
)

const recordPrefix = "session"

// BadgerStore persists records in a badger database, keyed by start time so
// that iteration follows start order.
type BadgerStore struct {
	db     *badger.DB
	path   string
	logger *logrus.Entry
}

// NewBadgerStore opens, or creates, the database at path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	logger.WithField("path", path).Debug("Opened history database")

	return &BadgerStore{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

func recordKey(r Record) []byte {
	return []byte(fmt.Sprintf("%s_%020d_%s", recordPrefix, r.StartedAt.UnixNano(), r.SessionID))
}

// Add implements Store.
func (s *BadgerStore) Add(r Record) error {
	val, err := r.Marshal()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(r), val)
	})
}

// Get returns the record of the given session.
func (s *BadgerStore) Get(sessionID string) (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}

	for _, r := range records {
		if r.SessionID == sessionID {
			return r, nil
		}
	}

	return Record{}, badger.ErrKeyNotFound
}

// List implements Store.
func (s *BadgerStore) List() ([]Record, error) {
	res := []Record{}
	prefix := []byte(recordPrefix + "_")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var r Record
			if err := r.Unmarshal(val); err != nil {
				return err
			}

			res = append(res, r)
		}

		return nil
	})

	return res, err
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
