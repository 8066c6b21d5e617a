package restic

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// Repository is an open handle on a restic-format repository rooted at a
// prefix inside an object store.
//
// Opening verifies the repository exists and, when a password is supplied,
// unwraps the master key and decrypts the config. Without a password the
// handle still classifies keys and accounts usage; only operations that
// read encrypted objects require the key.
type Repository struct {
	store      r2.Store
	prefix     string
	classifier *Classifier

	key *Key    // nil without password
	cfg *Config // nil without password

	layoutMu sync.Mutex
	layout   *Layout // nil until detected
}

// OpenOptions control how a repository is opened.
type OpenOptions struct {
	// Prefix is the object-key prefix the repository is rooted at. Empty
	// means the bucket root.
	Prefix string

	// Password unlocks the repository's master key. When empty, Open only
	// verifies the config object exists and skips all decryption.
	Password string
}

// Open verifies a repository exists at the prefix and returns a handle on
// it. A missing, malformed or unsupported config object fails with an
// unknown-repository-layout error, since nothing else about the namespace
// can be trusted in that case.
func Open(ctx context.Context, store r2.Store, opts OpenOptions) (*Repository, error) {
	prefix := NormalizePrefix(opts.Prefix)

	ctx, span := telemetry.StartRepoSpan(ctx, "open", prefix)
	defer span.End()

	raw, err := store.Get(ctx, prefix+"config")
	if err != nil {
		if errors.Is(err, r2.ErrNotFound) {
			return nil, r2.NewUnknownRepositoryLayoutError("repository config not found", err)
		}
		return nil, err
	}
	if len(raw) < nonceSize+macSize {
		return nil, r2.NewUnknownRepositoryLayoutError("repository config is malformed", nil)
	}

	repo := &Repository{
		store:      store,
		prefix:     prefix,
		classifier: NewClassifier(prefix),
	}

	if opts.Password != "" {
		key, err := SearchKey(ctx, store, prefix, opts.Password)
		if err != nil {
			return nil, err
		}

		plain, err := key.Decrypt(raw)
		if err != nil {
			return nil, r2.NewUnknownRepositoryLayoutError("repository config cannot be decrypted", err)
		}
		cfg, err := parseConfig(plain)
		if err != nil {
			return nil, r2.NewUnknownRepositoryLayoutError(err.Error(), nil)
		}

		repo.key = key
		repo.cfg = cfg
		telemetry.SetAttributes(ctx, telemetry.RepoVersion(cfg.Version))

		logger.Debug("opened repository",
			"prefix", prefix,
			"version", cfg.Version,
			"id", cfg.ID[:8],
		)
	} else {
		logger.Debug("opened repository without password", "prefix", prefix)
	}

	return repo, nil
}

// Prefix returns the normalized object-key prefix of the repository.
func (r *Repository) Prefix() string {
	return r.prefix
}

// Classifier returns the role classifier for this repository's namespace.
func (r *Repository) Classifier() *Classifier {
	return r.classifier
}

// Config returns the decrypted repository configuration, or nil when the
// repository was opened without a password.
func (r *Repository) Config() *Config {
	return r.cfg
}

// Key returns the repository master key, or nil when the repository was
// opened without a password.
func (r *Repository) Key() *Key {
	return r.key
}

// DetectLayout probes the data/ namespace to determine how pack files are
// fanned out. The result is cached for the lifetime of the handle. An empty
// data/ namespace reports the default layout.
func (r *Repository) DetectLayout(ctx context.Context) (Layout, error) {
	r.layoutMu.Lock()
	defer r.layoutMu.Unlock()

	if r.layout != nil {
		return *r.layout, nil
	}

	layout := LayoutDefault
	it := r.store.List(ctx, r.prefix+"data/")
	if it.Next() {
		rel := strings.TrimPrefix(it.Object().Key, r.prefix+"data/")
		if !strings.Contains(rel, "/") {
			layout = LayoutS3Legacy
		}
	} else if err := it.Err(); err != nil {
		return LayoutDefault, err
	}

	r.layout = &layout
	return layout, nil
}
