// Package database defines the blocks and transactions that make up the
// ledger, their canonical encodings, the rejection kinds, and the behavior
// required to persist blocks.
package database

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks the stored blocks converting them into blocks.
type DatabaseIterator struct {
	iterator Iterator
}

// NewIterator wraps the serializer iterator.
func NewIterator(serializer Serializer) *DatabaseIterator {
	return &DatabaseIterator{iterator: serializer.ForEach()}
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// ReadAllBlocks loads every stored block in chain order. In a real world
// situation this would require a lot of memory.
func ReadAllBlocks(serializer Serializer) ([]Block, error) {
	var blocks []Block

	iter := NewIterator(serializer)
	for {
		block, err := iter.Next()
		if iter.Done() {
			break
		}
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}
