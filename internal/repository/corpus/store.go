// Package corpus persists the document corpus: a binary vector file plus a
// JSON metadata file. Vectors are keyed by document id rather than insertion
// position, so a metadata entry that cannot resolve its vector is detected at
// load time instead of silently desyncing after a partial rebuild.
package corpus

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/docly-ai/texforge/internal/domain"
)

// Vector file layout: magic, version, dim, count, then per entry
// idLen + id bytes + dim float32 values, all little-endian.
const (
	vectorFileMagic   = uint32(0x54465658) // "TFVX"
	vectorFileVersion = uint16(1)
)

// Store is the read-only corpus: ordered records plus their embeddings.
// Records keep their build-time order; vectors are looked up by id.
type Store struct {
	records []domain.Record
	vectors map[string][]float32
	dim     int
}

// New builds a Store from aligned record and vector slices. Every record must
// have a vector of the same dimension.
func New(records []domain.Record, vectors [][]float32) (*Store, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records, %d vectors",
			domain.ErrCorpusDesync, len(records), len(vectors))
	}

	dim := 0
	keyed := make(map[string][]float32, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("record %d has empty id", i)
		}
		if _, dup := keyed[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate record id %q", rec.ID)
		}
		if dim == 0 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) == 0 || len(vectors[i]) != dim {
			return nil, fmt.Errorf("record %q: vector dimension %d, corpus dimension %d",
				rec.ID, len(vectors[i]), dim)
		}
		keyed[rec.ID] = vectors[i]
	}

	return &Store{records: records, vectors: keyed, dim: dim}, nil
}

// Records returns the corpus records in build order.
func (s *Store) Records() []domain.Record { return s.records }

// Vector returns the embedding for a record id.
func (s *Store) Vector(id string) ([]float32, bool) {
	v, ok := s.vectors[id]
	return v, ok
}

// Len returns the corpus size.
func (s *Store) Len() int { return len(s.records) }

// Dim returns the embedding dimension.
func (s *Store) Dim() int { return s.dim }

// Save writes the vector and metadata files, creating parent directories.
func (s *Store) Save(vectorsPath, metaPath string) error {
	if err := os.MkdirAll(filepath.Dir(vectorsPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return fmt.Errorf("create meta dir: %w", err)
	}

	f, err := os.Create(vectorsPath)
	if err != nil {
		return fmt.Errorf("create vector file: %w", err)
	}
	defer f.Close()

	if err := s.writeVectors(f); err != nil {
		return fmt.Errorf("write vector file: %w", err)
	}

	meta, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Store) writeVectors(w io.Writer) error {
	header := []any{vectorFileMagic, vectorFileVersion, uint32(s.dim), uint32(len(s.records))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for _, rec := range s.records {
		id := []byte(rec.ID)
		if err := binary.Write(w, binary.LittleEndian, uint16(len(id))); err != nil {
			return err
		}
		if _, err := w.Write(id); err != nil {
			return err
		}
		vec := s.vectors[rec.ID]
		buf := make([]byte, len(vec)*4)
		for i, f := range vec {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a persisted corpus. A missing file is domain.ErrIndexNotFound;
// a metadata entry without a matching vector is domain.ErrCorpusDesync.
func Load(vectorsPath, metaPath string) (*Store, error) {
	vecData, err := os.ReadFile(filepath.Clean(vectorsPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: vector file %s", domain.ErrIndexNotFound, vectorsPath)
		}
		return nil, fmt.Errorf("read vector file: %w", err)
	}

	metaData, err := os.ReadFile(filepath.Clean(metaPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: metadata file %s", domain.ErrIndexNotFound, metaPath)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	vectors, dim, err := parseVectors(vecData)
	if err != nil {
		return nil, fmt.Errorf("parse vector file: %w", err)
	}

	var records []domain.Record
	if err := json.Unmarshal(metaData, &records); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	for _, rec := range records {
		if _, ok := vectors[rec.ID]; !ok {
			return nil, fmt.Errorf("%w: no vector for record %q", domain.ErrCorpusDesync, rec.ID)
		}
	}

	return &Store{records: records, vectors: vectors, dim: dim}, nil
}

func parseVectors(data []byte) (map[string][]float32, int, error) {
	r := &byteReader{data: data}

	magic, err := r.uint32()
	if err != nil {
		return nil, 0, err
	}
	if magic != vectorFileMagic {
		return nil, 0, fmt.Errorf("bad magic 0x%08x", magic)
	}
	version, err := r.uint16()
	if err != nil {
		return nil, 0, err
	}
	if version != vectorFileVersion {
		return nil, 0, fmt.Errorf("unsupported version %d", version)
	}
	dim32, err := r.uint32()
	if err != nil {
		return nil, 0, err
	}
	count, err := r.uint32()
	if err != nil {
		return nil, 0, err
	}
	dim := int(dim32)

	vectors := make(map[string][]float32, count)
	for i := uint32(0); i < count; i++ {
		idLen, err := r.uint16()
		if err != nil {
			return nil, 0, err
		}
		id, err := r.bytes(int(idLen))
		if err != nil {
			return nil, 0, err
		}
		raw, err := r.bytes(dim * 4)
		if err != nil {
			return nil, 0, err
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
		}
		vectors[string(id)] = vec
	}

	return vectors, dim, nil
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("truncated at offset %d (want %d bytes)", r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
