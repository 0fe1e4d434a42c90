package memory

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/storage"
)

// Persistent state is three artifacts saved side by side: the raw vectors,
// the metadata table, and a config blob tying them to an embedding space and
// the id sequence. Each artifact is replaced atomically by the storage layer;
// load refuses the set unless all three agree.
const (
	indexArtifact    = "index.bin"
	metadataArtifact = "metadata.json"
	configArtifact   = "config.json"
)

const (
	indexMagic   uint32 = 0x4d454d58 // "MEMX"
	indexVersion uint32 = 1
)

type metadataBlob struct {
	Entries []*Entry `json:"entries"`
}

type configBlob struct {
	Dimension int    `json:"dimension"`
	NextID    int    `json:"next_id"`
	Embedder  string `json:"embedder"`
}

// encodeIndex serializes the vector rows as little-endian float32 bits behind
// a fixed 16-byte header: magic, version, dimension, row count.
func encodeIndex(ix *FlatIndex) []byte {
	buf := make([]byte, 16+len(ix.data)*4)
	binary.LittleEndian.PutUint32(buf[0:4], indexMagic)
	binary.LittleEndian.PutUint32(buf[4:8], indexVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(ix.dim))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(ix.count))
	for i, v := range ix.data {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeIndex(data []byte) (*FlatIndex, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("index blob truncated: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != indexMagic {
		return nil, fmt.Errorf("index blob has wrong magic: %#x", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != indexVersion {
		return nil, fmt.Errorf("unsupported index blob version: %d", version)
	}

	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if dim <= 0 {
		return nil, fmt.Errorf("index blob has invalid dimension: %d", dim)
	}
	if want := 16 + dim*count*4; len(data) != want {
		return nil, fmt.Errorf("index blob size mismatch: have %d bytes, want %d", len(data), want)
	}

	ix, err := NewFlatIndex(dim)
	if err != nil {
		return nil, err
	}
	ix.data = make([]float32, dim*count)
	for i := range ix.data {
		ix.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16+i*4:]))
	}
	ix.count = count
	return ix, nil
}

// persistLocked writes all three artifacts. Failures are logged and swallowed;
// the in-memory state remains authoritative and the next mutation retries the
// full write. Callers must hold the write lock.
func (s *Store) persistLocked() {
	if s.storage == nil {
		return
	}

	s.saveArtifact(indexArtifact, encodeIndex(s.index))

	ordered := make([]*Entry, len(s.order))
	for i, id := range s.order {
		ordered[i] = s.entries[id]
	}
	meta, err := json.Marshal(metadataBlob{Entries: ordered})
	if err != nil {
		s.logPersistFailure(metadataArtifact, err)
	} else {
		s.saveArtifact(metadataArtifact, meta)
	}

	cfg, err := json.Marshal(configBlob{
		Dimension: s.index.Dimension(),
		NextID:    s.nextID,
		Embedder:  s.embedder.Name(),
	})
	if err != nil {
		s.logPersistFailure(configArtifact, err)
	} else {
		s.saveArtifact(configArtifact, cfg)
	}
}

func (s *Store) saveArtifact(name string, data []byte) {
	if err := s.storage.Save(name, data); err != nil {
		s.logPersistFailure(name, err)
	}
}

func (s *Store) logPersistFailure(name string, err error) {
	perr := &core.PersistenceError{Op: "save", Artifact: name, Err: err}
	s.logger.Error("memory.persist.failed", "artifact", name, "error", perr.Error())
}

// load restores persisted state from the storage backend. A store with no
// artifacts at all starts fresh silently; anything unreadable or mutually
// inconsistent is logged and the store starts empty instead of adopting a
// half-trustworthy state. Runs during construction, before the store is
// shared.
func (s *Store) load() {
	indexData, indexErr := s.storage.Load(indexArtifact)
	metaData, metaErr := s.storage.Load(metadataArtifact)
	cfgData, cfgErr := s.storage.Load(configArtifact)

	if errors.Is(indexErr, storage.ErrNotFound) &&
		errors.Is(metaErr, storage.ErrNotFound) &&
		errors.Is(cfgErr, storage.ErrNotFound) {
		return
	}

	for _, a := range []struct {
		name string
		err  error
	}{
		{indexArtifact, indexErr},
		{metadataArtifact, metaErr},
		{configArtifact, cfgErr},
	} {
		if a.err != nil {
			s.logger.Warn("memory.load.unreadable", "artifact", a.name, "error", a.err.Error())
			return
		}
	}

	var cfg configBlob
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		s.logger.Warn("memory.load.unreadable", "artifact", configArtifact, "error", err.Error())
		return
	}
	var meta metadataBlob
	if err := json.Unmarshal(metaData, &meta); err != nil {
		s.logger.Warn("memory.load.unreadable", "artifact", metadataArtifact, "error", err.Error())
		return
	}
	ix, err := decodeIndex(indexData)
	if err != nil {
		s.logger.Warn("memory.load.unreadable", "artifact", indexArtifact, "error", err.Error())
		return
	}

	if err := s.validateLoaded(ix, meta.Entries, cfg); err != nil {
		s.logger.Warn("memory.load.inconsistent", "error", err.Error())
		return
	}

	entries := make(map[string]*Entry, len(meta.Entries))
	order := make([]string, len(meta.Entries))
	for i, e := range meta.Entries {
		if e.Metadata == nil {
			e.Metadata = map[string]any{}
		}
		entries[e.ID] = e
		order[i] = e.ID
	}

	s.index = ix
	s.entries = entries
	s.order = order
	s.nextID = cfg.NextID
	s.logger.Info("memory.load.ok", "entries", len(order), "dimension", ix.Dimension())
}

// validateLoaded cross-checks the three artifacts against each other and the
// configured embedder before any of them are adopted.
func (s *Store) validateLoaded(ix *FlatIndex, entries []*Entry, cfg configBlob) error {
	if cfg.Dimension != s.embedder.Dimensions() {
		return fmt.Errorf("persisted dimension %d does not match embedder dimension %d", cfg.Dimension, s.embedder.Dimensions())
	}
	if cfg.Embedder != "" && cfg.Embedder != s.embedder.Name() {
		return fmt.Errorf("persisted embedder %q does not match configured embedder %q", cfg.Embedder, s.embedder.Name())
	}
	if ix.Dimension() != cfg.Dimension {
		return fmt.Errorf("index dimension %d does not match config dimension %d", ix.Dimension(), cfg.Dimension)
	}
	if ix.Count() != len(entries) {
		return fmt.Errorf("index holds %d vectors but metadata lists %d entries", ix.Count(), len(entries))
	}
	if cfg.NextID < len(entries) {
		return fmt.Errorf("next id %d is behind entry count %d", cfg.NextID, len(entries))
	}

	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry at position %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entry id %s", e.ID)
		}
		seen[e.ID] = true
		if e.Position != i {
			return fmt.Errorf("entry %s claims position %d but sits at %d", e.ID, e.Position, i)
		}
	}
	return nil
}
