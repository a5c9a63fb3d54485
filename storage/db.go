package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"
)

type Config struct {
	Path string
}

// Storage is the key/value surface the attempt journal needs.
type Storage interface {
	Set(key, value []byte) error
	GetByPrefix(prefix []byte) ([]*KeyValueItem, error)

	// Key only scan, values are never loaded
	CountKeysByPrefix(prefix []byte) (int64, error)

	// Counters are stored as decimal strings; a missing counter reads as 0
	GetCounter(key []byte) (uint64, error)
	IncCounter(key []byte) (uint64, error)

	DbPath() string
	Close() error
}

type KeyValueItem struct {
	Key   []byte
	Value []byte
}

type BadgerStorage struct {
	config *Config
	db     *badger.DB
}

// Create storage pool at the particular path
func NewWithPath(path string) (Storage, error) {
	return New(&Config{
		Path: path,
	})
}

func New(c *Config) (Storage, error) {
	opts := badger.DefaultOptions(c.Path).
		WithSyncWrites(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStorage{config: c, db: db}, nil
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStorage) DbPath() string {
	return s.config.Path
}

func (s *BadgerStorage) Set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// GetByPrefix returns every key/value pair under prefix in key order.
func (s *BadgerStorage) GetByPrefix(prefix []byte) ([]*KeyValueItem, error) {
	var result []*KeyValueItem

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 30
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result = append(result, &KeyValueItem{Key: item.KeyCopy(nil), Value: v})
		}
		return nil
	})
	return result, err
}

func (s *BadgerStorage) CountKeysByPrefix(prefix []byte) (int64, error) {
	if len(prefix) == 0 {
		return 0, fmt.Errorf("cannot count prefix with length 0")
	}

	var total int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			total++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *BadgerStorage) GetCounter(key []byte) (uint64, error) {
	var counter uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		counter, err = readCounter(txn, key)
		return err
	})
	return counter, err
}

// IncCounter adds one to the counter at key and returns the new value.
func (s *BadgerStorage) IncCounter(key []byte) (uint64, error) {
	var next uint64
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readCounter(txn, key)
		if err != nil {
			return err
		}
		next = current + 1
		return txn.Set(key, []byte(strconv.FormatUint(next, 10)))
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var counter uint64
	err = item.Value(func(val []byte) error {
		parsed, err := strconv.ParseUint(string(val), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid counter format at %s: %w", key, err)
		}
		counter = parsed
		return nil
	})
	return counter, err
}

// Destroy shuts the database down and wipes its data directory.
func Destroy(s *BadgerStorage) error {
	s.Close()
	return os.RemoveAll(s.config.Path)
}
