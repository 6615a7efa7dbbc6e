package objects

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

// StoreOptions configures an ObjectStore.
type StoreOptions struct {
	// Codec applies only when the store is created; an existing store keeps
	// the codec recorded in its pack header.
	Codec Codec

	// Sync fsyncs payload and record after every write.
	Sync bool

	// CacheBytes caps the read cache. Zero disables it.
	CacheBytes int
}

// DefaultStoreOptions returns the options used by repositories.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Codec:      CodecNone,
		Sync:       true,
		CacheBytes: constants.CacheMaxBytes,
	}
}

// ObjectStore is an append-only, deduplicating, hash-indexed object store.
//
// Record metadata lives in parallel arrays (hashes, types, offsets, lengths)
// so scans that need one field touch one array; payload bytes live in a
// separate region. On disk the region is objects/pack.dat and every record
// is mirrored as a fixed-width row in objects/index.dat.
type ObjectStore struct {
	// appendMu makes check-then-append atomic per hash. Readers never take it.
	appendMu sync.Mutex

	// mu guards index and the arrays. Held only for map/slice access.
	mu      sync.RWMutex
	index   map[utils.Hash]int
	hashes  []utils.Hash
	types   []utils.ObjectType
	offsets []uint64
	lengths []uint64

	payload region
	records region
	codec   *payloadCodec
	cache   *encodedCache
	dir     string
}

// NewMemoryObjectStore returns a store that never touches the filesystem.
func NewMemoryObjectStore() *ObjectStore {
	store, err := newObjectStore(&memRegion{}, &memRegion{}, "", StoreOptions{CacheBytes: constants.CacheMaxBytes})
	if err != nil {
		// Empty in-memory regions with the no-op codec cannot fail to load.
		panic(fmt.Sprintf("memory object store: %v", err))
	}
	return store
}

// OpenObjectStore opens the store in dir (normally .vx/objects), creating
// empty pack and index files when they do not exist yet.
func OpenObjectStore(dir string, opts StoreOptions) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	payload, err := openFileRegion(filepath.Join(dir, constants.PackFile), opts.Sync)
	if err != nil {
		return nil, err
	}
	records, err := openFileRegion(filepath.Join(dir, constants.IndexFile), opts.Sync)
	if err != nil {
		payload.Close()
		return nil, err
	}

	store, err := newObjectStore(payload, records, dir, opts)
	if err != nil {
		payload.Close()
		records.Close()
		return nil, err
	}
	return store, nil
}

func newObjectStore(payload, records region, dir string, opts StoreOptions) (*ObjectStore, error) {
	store := &ObjectStore{
		index:   make(map[utils.Hash]int),
		payload: payload,
		records: records,
		cache:   newEncodedCache(opts.CacheBytes),
		dir:     dir,
	}

	codec, err := store.initHeaders(opts.Codec)
	if err != nil {
		return nil, err
	}
	if store.codec, err = newPayloadCodec(codec); err != nil {
		return nil, err
	}
	if err := store.loadRecords(); err != nil {
		store.codec.close()
		return nil, err
	}

	slog.Debug("Opened object store",
		"dir", dir,
		"objects", len(store.hashes),
		"codec", codec)
	return store, nil
}

// initHeaders writes headers into empty regions or validates existing ones,
// returning the codec the pack was created with.
func (s *ObjectStore) initHeaders(codec Codec) (Codec, error) {
	if s.payload.Size() == 0 && s.records.Size() == 0 {
		if _, err := s.payload.Append(packHeader(codec)); err != nil {
			return 0, fmt.Errorf("failed to write pack header: %w", err)
		}
		if _, err := s.records.Append(indexHeader()); err != nil {
			return 0, fmt.Errorf("failed to write index header: %w", err)
		}
		return codec, nil
	}

	header := make([]byte, constants.PackHeaderSize)
	if err := readFull(s.payload, header, 0); err != nil {
		return 0, formatErrorf("pack header unreadable: %v", err)
	}
	if string(header[:4]) != constants.PackMagic {
		return 0, formatErrorf("bad pack magic %q", header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != constants.StoreVersion {
		return 0, formatErrorf("unsupported pack version %d", v)
	}
	stored := Codec(header[8])
	if stored != codec {
		slog.Debug("Using codec recorded in pack header",
			"requested", codec,
			"stored", stored)
	}

	header = header[:constants.IndexHeaderSize]
	if err := readFull(s.records, header, 0); err != nil {
		return 0, formatErrorf("index header unreadable: %v", err)
	}
	if string(header[:4]) != constants.IndexMagic {
		return 0, formatErrorf("bad index magic %q", header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != constants.StoreVersion {
		return 0, formatErrorf("unsupported index version %d", v)
	}
	return stored, nil
}

func packHeader(codec Codec) []byte {
	header := make([]byte, constants.PackHeaderSize)
	copy(header, constants.PackMagic)
	binary.LittleEndian.PutUint32(header[4:8], constants.StoreVersion)
	header[8] = byte(codec)
	return header
}

func indexHeader() []byte {
	header := make([]byte, constants.IndexHeaderSize)
	copy(header, constants.IndexMagic)
	binary.LittleEndian.PutUint32(header[4:8], constants.StoreVersion)
	return header
}

func encodeRecord(hash utils.Hash, objectType utils.ObjectType, offset, length uint64) []byte {
	record := make([]byte, constants.IndexRecordSize)
	copy(record, hash[:])
	record[utils.HashSize] = byte(objectType)
	binary.LittleEndian.PutUint64(record[utils.HashSize+1:], offset)
	binary.LittleEndian.PutUint64(record[utils.HashSize+9:], length)
	return record
}

// loadRecords rebuilds the arrays and the index from the record region.
// A partial trailing record, left by a crash between the payload append and
// the record append, is cut off.
func (s *ObjectStore) loadRecords() error {
	body := s.records.Size() - constants.IndexHeaderSize
	if body < 0 {
		return formatErrorf("index shorter than its header")
	}
	if partial := body % constants.IndexRecordSize; partial != 0 {
		slog.Warn("Dropping truncated index record",
			"dir", s.dir,
			"bytes", partial)
		body -= partial
		if err := s.records.Truncate(constants.IndexHeaderSize + body); err != nil {
			return fmt.Errorf("failed to truncate index: %w", err)
		}
	}

	raw := make([]byte, body)
	if err := readFull(s.records, raw, constants.IndexHeaderSize); err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	packSize := uint64(s.payload.Size())
	count := int(body / constants.IndexRecordSize)
	for i := range count {
		record := raw[i*constants.IndexRecordSize : (i+1)*constants.IndexRecordSize]

		var hash utils.Hash
		copy(hash[:], record)
		objectType := utils.ObjectType(record[utils.HashSize])
		offset := binary.LittleEndian.Uint64(record[utils.HashSize+1:])
		length := binary.LittleEndian.Uint64(record[utils.HashSize+9:])

		if !objectType.IsValid() {
			return formatErrorf("index record %d has unknown type tag %d", i, uint8(objectType))
		}
		if offset < constants.PackHeaderSize || offset > packSize || length > packSize-offset {
			return formatErrorf("index record %d points past the end of the pack (offset %d, length %d, pack %d)", i, offset, length, packSize)
		}
		if _, dup := s.index[hash]; dup {
			slog.Warn("Ignoring duplicate index record",
				"hash", hash)
			continue
		}
		s.publish(hash, objectType, offset, length)
	}
	return nil
}

// publish makes a record visible to readers.
func (s *ObjectStore) publish(hash utils.Hash, objectType utils.ObjectType, offset, length uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index[hash] = len(s.hashes)
	s.hashes = append(s.hashes, hash)
	s.types = append(s.types, objectType)
	s.offsets = append(s.offsets, offset)
	s.lengths = append(s.lengths, length)
}

// Write stores obj and returns its hash. Writing an object that is already
// stored returns the same hash and writes nothing.
func (s *ObjectStore) Write(obj Object) (utils.Hash, error) {
	hash := obj.Hash()
	if s.Contains(hash) {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}

	stored := s.codec.compress(obj.Data())

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	// An identical writer may have won the race while we encoded.
	if s.Contains(hash) {
		return hash, nil
	}

	offset, err := s.payload.Append(stored)
	if err != nil {
		return utils.ZeroHash, fmt.Errorf("failed to append object %s: %w", hash, err)
	}
	record := encodeRecord(hash, obj.Type(), uint64(offset), uint64(len(stored)))
	if _, err := s.records.Append(record); err != nil {
		// Drop the payload so a retry does not leave an unindexed copy behind.
		if truncErr := s.payload.Truncate(offset); truncErr != nil {
			slog.Warn("Failed to roll back pack append",
				"hash", hash,
				"error", truncErr)
		}
		return utils.ZeroHash, fmt.Errorf("failed to append index record for %s: %w", hash, err)
	}

	s.publish(hash, obj.Type(), uint64(offset), uint64(len(stored)))
	return hash, nil
}

// Read returns the object stored under hash.
func (s *ObjectStore) Read(hash utils.Hash) (Object, error) {
	data, err := s.readEncoded(hash)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadBlob reads an object and requires it to be a blob.
func (s *ObjectStore) ReadBlob(hash utils.Hash) (*Blob, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	return AsBlob(obj)
}

// ReadTree reads an object and requires it to be a tree.
func (s *ObjectStore) ReadTree(hash utils.Hash) (*Tree, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	return AsTree(obj)
}

// ReadCommit reads an object and requires it to be a commit.
func (s *ObjectStore) ReadCommit(hash utils.Hash) (*Commit, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	return AsCommit(obj)
}

func (s *ObjectStore) readEncoded(hash utils.Hash) ([]byte, error) {
	if data, ok := s.cache.get(hash); ok {
		return data, nil
	}

	s.mu.RLock()
	i, ok := s.index[hash]
	var offset, length uint64
	if ok {
		offset, length = s.offsets[i], s.lengths[i]
	}
	s.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Hash: hash}
	}

	data, err := s.loadPayload(hash, offset, length)
	if err != nil {
		return nil, err
	}
	s.cache.put(hash, data)
	return data, nil
}

// loadPayload reads, decompresses and digest-checks one record's bytes.
func (s *ObjectStore) loadPayload(hash utils.Hash, offset, length uint64) ([]byte, error) {
	stored := make([]byte, length)
	if err := readFull(s.payload, stored, int64(offset)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, formatErrorf("payload of %s truncated", hash)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", hash, err)
	}

	data, err := s.codec.decompress(stored)
	if err != nil {
		return nil, err
	}
	if actual := utils.ComputeHash(data); actual != hash {
		return nil, formatErrorf("hash mismatch: expected %s, got %s", hash, actual)
	}
	return data, nil
}

// Contains reports whether hash is stored, without touching payload bytes.
func (s *ObjectStore) Contains(hash utils.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[hash]
	return ok
}

// TypeOf returns the type tag recorded for hash.
func (s *ObjectStore) TypeOf(hash utils.Hash) (utils.ObjectType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[hash]
	if !ok {
		return 0, &NotFoundError{Hash: hash}
	}
	return s.types[i], nil
}

// Len returns the number of stored objects.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}

// PayloadSize is the number of stored payload bytes, headers excluded.
func (s *ObjectStore) PayloadSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, length := range s.lengths {
		total += length
	}
	return total
}

// snapshot returns the arrays as of now. Published elements are never
// rewritten, so the returned prefixes stay valid after the lock is dropped.
func (s *ObjectStore) snapshot() (hashes []utils.Hash, types []utils.ObjectType, offsets, lengths []uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.hashes)
	return s.hashes[:n:n], s.types[:n:n], s.offsets[:n:n], s.lengths[:n:n]
}

// List returns the hashes of every stored object of the given type, in
// write order.
func (s *ObjectStore) List(objectType utils.ObjectType) []utils.Hash {
	hashes, types, _, _ := s.snapshot()

	var result []utils.Hash
	for i, t := range types {
		if t == objectType {
			result = append(result, hashes[i])
		}
	}
	return result
}

// Hashes returns every stored hash in write order.
func (s *ObjectStore) Hashes() []utils.Hash {
	hashes, _, _, _ := s.snapshot()
	return append([]utils.Hash(nil), hashes...)
}

// VerifyFailure describes one record whose payload is unreadable or does
// not hash to its key.
type VerifyFailure struct {
	Hash utils.Hash
	Err  error
}

// Verify rehashes every stored payload, bypassing the read cache.
func (s *ObjectStore) Verify() []VerifyFailure {
	hashes, types, offsets, lengths := s.snapshot()

	var failures []VerifyFailure
	for i, hash := range hashes {
		data, err := s.loadPayload(hash, offsets[i], lengths[i])
		if err == nil && (len(data) < constants.ObjectHeaderLength || utils.ObjectType(data[len(constants.ObjectMagic)]) != types[i]) {
			err = formatErrorf("object %s is recorded as %s but its payload disagrees", hash, types[i])
		}
		if err != nil {
			failures = append(failures, VerifyFailure{Hash: hash, Err: err})
		}
	}
	return failures
}

// Codec returns the payload codec of this store.
func (s *ObjectStore) Codec() Codec {
	return s.codec.codec
}

// Close releases the underlying files.
func (s *ObjectStore) Close() error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	s.codec.close()
	return errors.Join(s.payload.Close(), s.records.Close())
}

func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}
