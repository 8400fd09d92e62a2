package corpus

import (
	"context"
	"errors"
)

// ErrExhausted signals that a batch iterator has no records left.
var ErrExhausted = errors.New("corpus exhausted")

// BatchIterator yields fixed-size batches of records in a single stable
// pass over the corpus. A short final chunk is not emitted: the loop
// only consumes full batches.
type BatchIterator interface {
	// Next returns the next full batch or ErrExhausted.
	Next(ctx context.Context) ([]Record, error)
}

// SliceIterator iterates an in-memory record slice.
type SliceIterator struct {
	records   []Record
	batchSize int
	offset    int
}

// NewSliceIterator creates an iterator over records with the given
// batch size.
func NewSliceIterator(records []Record, batchSize int) *SliceIterator {
	return &SliceIterator{records: records, batchSize: batchSize}
}

func (it *SliceIterator) Next(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.offset+it.batchSize > len(it.records) {
		return nil, ErrExhausted
	}
	batch := it.records[it.offset : it.offset+it.batchSize]
	it.offset += it.batchSize
	return batch, nil
}

// Reset rewinds the iterator to the start of the corpus.
func (it *SliceIterator) Reset() {
	it.offset = 0
}

// StoreIterator iterates cached records from a Store in position order.
type StoreIterator struct {
	store     *Store
	batchSize int
	offset    int
}

// NewStoreIterator creates an iterator over a prepared-corpus store.
func NewStoreIterator(store *Store, batchSize int) *StoreIterator {
	return &StoreIterator{store: store, batchSize: batchSize}
}

func (it *StoreIterator) Next(ctx context.Context) ([]Record, error) {
	records, err := it.store.Records(ctx, it.offset, it.batchSize)
	if err != nil {
		return nil, err
	}
	if len(records) < it.batchSize {
		return nil, ErrExhausted
	}
	it.offset += it.batchSize
	return records, nil
}

// Reset rewinds the iterator to the start of the corpus.
func (it *StoreIterator) Reset() {
	it.offset = 0
}
