// Package store keeps exported SVM snapshots in an on-disk registry keyed by
// model ID, with an in-memory LRU of loaded models for repeated prediction.
package store

import (
	"bytes"
	"sort"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/peterbourgon/diskv"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/log"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

// ErrNotFound marks lookups of IDs that are not in the store.
var ErrNotFound = errors.New("model not found")

// Defaults for Options.
const (
	DefaultCacheSize    = 16
	DefaultDiskCacheMax = 4096 * 1024
	blockSize           = 8
)

// Options configures a Store.
type Options struct {
	// BasePath is the root directory of the registry.
	BasePath string
	// CacheSize bounds the number of loaded models kept in memory.
	CacheSize int
	// DiskCacheMax bounds diskv's own cache of raw values, in bytes.
	DiskCacheMax uint64
	// ModelOptions are passed to svm.Load for every model the store loads.
	ModelOptions []svm.Option
}

// Store is safe for concurrent use.
type Store struct {
	dv        *diskv.Diskv
	models    *lru.Cache
	modelOpts []svm.Option
}

// BlockTransform splits a key into blockSize-character directory levels.
func BlockTransform(blockSize int) func(string) []string {
	return func(s string) []string {
		var (
			sliceSize = len(s) / blockSize
			pathSlice = make([]string, sliceSize)
		)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

// Open creates a store rooted at opts.BasePath. The directory is created lazily
// on the first write.
func Open(opts Options) (*Store, error) {
	if opts.BasePath == "" {
		return nil, errors.NewValidationError("base_path", "must not be empty", opts.BasePath)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.DiskCacheMax == 0 {
		opts.DiskCacheMax = DefaultDiskCacheMax
	}

	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model cache")
	}
	dv := diskv.New(diskv.Options{
		BasePath:     opts.BasePath,
		Transform:    BlockTransform(blockSize),
		CacheSizeMax: opts.DiskCacheMax,
		Compression:  diskv.NewGzipCompression(),
	})
	return &Store{
		dv:        dv,
		models:    cache,
		modelOpts: append([]svm.Option(nil), opts.ModelOptions...),
	}, nil
}

// key maps a model ID onto its 32-character hex form.
func key(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", errors.NewValidationError("model_id", "must be a UUID", id)
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}

// Put writes snap under its model ID, replacing any previous entry, and returns the ID.
func (s *Store) Put(snap svm.Snapshot) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}
	k, err := key(snap.ModelID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := svm.WriteSnapshot(&buf, snap, model.FormatGob); err != nil {
		return "", err
	}
	if err := s.dv.Write(k, buf.Bytes()); err != nil {
		return "", errors.Wrapf(err, "failed to store model %s", snap.ModelID)
	}
	s.models.Remove(k)

	log.GetLoggerWithName("store").Debug("Model stored",
		log.EstimatorIDKey, snap.ModelID,
		log.KernelKey, string(snap.Config.Kernel.Type),
	)
	return snap.ModelID, nil
}

// Get reads the snapshot stored under id.
func (s *Store) Get(id string) (svm.Snapshot, error) {
	k, err := key(id)
	if err != nil {
		return svm.Snapshot{}, err
	}
	return s.read(id, k)
}

func (s *Store) read(id, k string) (svm.Snapshot, error) {
	if !s.dv.Has(k) {
		return svm.Snapshot{}, errors.Wrapf(ErrNotFound, "model %s", id)
	}
	data, err := s.dv.Read(k)
	if err != nil {
		return svm.Snapshot{}, errors.Wrapf(err, "failed to read model %s", id)
	}
	return svm.ReadSnapshot(bytes.NewReader(data), model.FormatGob)
}

// Model returns the loaded model for id, from the LRU when possible. Every
// model is loaded with Options.ModelOptions, so cached and fresh models agree.
// Returned models are shared; callers must not Fit them.
func (s *Store) Model(id string) (*svm.SVC, error) {
	k, err := key(id)
	if err != nil {
		return nil, err
	}
	if v, ok := s.models.Get(k); ok {
		return v.(*svm.SVC), nil
	}

	snap, err := s.read(id, k)
	if err != nil {
		return nil, err
	}
	clf, err := svm.Load(snap, s.modelOpts...)
	if err != nil {
		return nil, err
	}
	s.models.Add(k, clf)
	return clf, nil
}

// Delete removes id from disk and from the cache.
func (s *Store) Delete(id string) error {
	k, err := key(id)
	if err != nil {
		return err
	}
	s.models.Remove(k)
	if !s.dv.Has(k) {
		return errors.Wrapf(ErrNotFound, "model %s", id)
	}
	if err := s.dv.Erase(k); err != nil {
		return errors.Wrapf(err, "failed to delete model %s", id)
	}
	return nil
}

// List returns the stored model IDs in ascending order.
func (s *Store) List() []string {
	var ids []string
	for k := range s.dv.Keys(nil) {
		u, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		ids = append(ids, u.String())
	}
	sort.Strings(ids)
	return ids
}

// Cached reports how many loaded models are held in memory.
func (s *Store) Cached() int { return s.models.Len() }
