package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend wraps a BadgerDB instance shared by the repositories in this
// package.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogBridge routes badger's internal logging through slog.
type slogBridge struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogBridge)(nil)

func (s *slogBridge) Errorf(format string, args ...any)   { s.logger.Error(fmt.Sprintf(format, args...)) }
func (s *slogBridge) Warningf(format string, args ...any) { s.logger.Warn(fmt.Sprintf(format, args...)) }
func (s *slogBridge) Infof(format string, args ...any)    { s.logger.Info(fmt.Sprintf(format, args...)) }
func (s *slogBridge) Debugf(format string, args ...any)   { s.logger.Debug(fmt.Sprintf(format, args...)) }

// OpenBackend opens the BadgerDB database at filePath, creating the
// directory when missing. With inMemory set the path is ignored and
// nothing touches disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	logger := slog.Default()

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}
	opts.Logger = &slogBridge{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, logger: logger}, nil
}

// ensureDir creates path when absent and rejects non-directory paths.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a transaction, read-write when isWrite is set.
// The transaction is always discarded afterwards; write callbacks must
// commit before returning.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
