package sketchdex

import (
	"context"
	"time"

	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/index/linear"
	"github.com/hupe1980/sketchdex/storage"
)

// Database is a named index searched by Search and Gather. Name is reported
// as the Filename of every result it produces.
type Database struct {
	Name  string
	Index index.Index[*index.SigStore]
}

// NewDatabase wraps items in a linear index. With WithStorage, the index can
// be saved and reopened with OpenDatabase.
func NewDatabase(name string, items []*index.SigStore, optFns ...Option) (Database, error) {
	o := applyOptions(optFns)
	idx := linear.New(func(lo *linear.Options) {
		lo.Storage = o.storage
		lo.Workers = o.workers
		lo.Codec = o.codec
		lo.Logger = o.logger.WithDatabase(name).Logger
	})
	if err := index.BatchInsert[*index.SigStore](idx, items); err != nil {
		return Database{}, translateError(name, err)
	}
	return Database{Name: name, Index: idx}, nil
}

// OpenDatabase restores the linear index whose manifest is stored under
// path. Signatures are read from st on first use.
func OpenDatabase(ctx context.Context, st storage.Storage, path string, optFns ...Option) (Database, error) {
	o := applyOptions(optFns)
	start := time.Now()

	idx := linear.New(func(lo *linear.Options) {
		lo.Storage = st
		lo.Workers = o.workers
		lo.Codec = o.codec
		lo.Logger = o.logger.WithDatabase(path).Logger
	})
	err := idx.Load(ctx, path)

	o.metricsCollector.RecordOpen(idx.Len(), time.Since(start), err)
	o.logger.LogOpen(ctx, path, idx.Len(), err)
	if err != nil {
		return Database{}, translateError(path, err)
	}
	return Database{Name: path, Index: idx}, nil
}
