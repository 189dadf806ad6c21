package linear

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/manifest"
	"github.com/hupe1980/sketchdex/sketch"
	"github.com/hupe1980/sketchdex/storage"
	"golang.org/x/sync/errgroup"
)

// Compile-time checks to ensure Linear satisfies required interfaces.
var _ index.Index[*index.SigStore] = (*Linear)(nil)
var _ index.Traverser = (*Linear)(nil)

// ErrNoStorage is returned by Save and Load when no storage is configured.
var ErrNoStorage = errors.New("linear: no storage configured")

// Options contains configuration options for the linear index.
type Options struct {
	// Storage holds signatures and manifests. It is attached to every
	// inserted handle that has none. Required for Save and Load.
	Storage storage.Storage

	// Workers bounds the goroutines used by SearchWith and Preload.
	// Zero means GOMAXPROCS.
	Workers int

	// Codec encodes saved signatures and manifests.
	Codec codec.Codec

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the linear index.
var DefaultOptions = Options{
	Codec: codec.Default,
}

// Linear is a linear-scan index over SigStore handles.
type Linear struct {
	mu    sync.RWMutex
	items []*index.SigStore

	opts      Options
	manifests *manifest.Store
	logger    *slog.Logger
}

// New creates an empty linear index.
func New(optFns ...func(o *Options)) *Linear {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	l := &Linear{
		opts:   opts,
		logger: logger,
	}
	if opts.Storage != nil {
		l.manifests = manifest.NewStore(opts.Storage, opts.Codec)
	}
	return l
}

func (*Linear) Name() string { return "Linear" }

// Len returns the number of items.
func (l *Linear) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Insert appends item. Handles without data need a filename to load from.
func (l *Linear) Insert(item *index.SigStore) error {
	if item == nil {
		return index.ErrNilItem
	}
	if !item.Loaded() && item.Filename() == "" {
		return index.ErrEmptyFilename
	}
	if item.Storage() == nil && l.opts.Storage != nil {
		item.SetStorage(l.opts.Storage)
	}

	l.mu.Lock()
	l.items = append(l.items, item)
	l.mu.Unlock()
	return nil
}

// Signatures returns independent copies of all items.
func (l *Linear) Signatures() []*index.SigStore {
	refs := l.SignatureRefs()
	out := make([]*index.SigStore, len(refs))
	for i, item := range refs {
		out[i] = item.Clone()
	}
	return out
}

// SignatureRefs returns the items in insertion order. The slice is a
// snapshot; the handles are the index's own.
func (l *Linear) SignatureRefs() []*index.SigStore {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*index.SigStore, len(l.items))
	copy(out, l.items)
	return out
}

// Save writes every signature the storage does not hold yet, then a
// manifest listing all items under path.
func (l *Linear) Save(ctx context.Context, path string) error {
	if l.opts.Storage == nil {
		return ErrNoStorage
	}

	existing, err := l.opts.Storage.List(ctx, "")
	if err != nil {
		return fmt.Errorf("linear: list storage: %w", err)
	}
	present := make(map[string]struct{}, len(existing))
	for _, k := range existing {
		present[k] = struct{}{}
	}

	refs := l.SignatureRefs()
	infos := make([]index.DatasetInfo, 0, len(refs))
	written := 0

	for _, item := range refs {
		info := item.DatasetInfo()
		if info.Filename == "" {
			sig := item.MustSignature()
			info.Filename = sig.MD5Sum() + ".sig"
		}

		if _, ok := present[info.Filename]; !ok {
			sig, err := item.DataContext(ctx)
			if err != nil {
				return err
			}
			data, err := sketch.MarshalSignatures(l.opts.Codec, sig)
			if err != nil {
				return fmt.Errorf("linear: encode %q: %w", info.Filename, err)
			}
			if err := l.opts.Storage.Save(ctx, info.Filename, data); err != nil {
				return fmt.Errorf("linear: save %q: %w", info.Filename, err)
			}
			present[info.Filename] = struct{}{}
			written++
		}

		infos = append(infos, info)
	}

	if err := l.manifests.Save(ctx, path, &manifest.Manifest{Signatures: infos}); err != nil {
		return fmt.Errorf("linear: save manifest %q: %w", path, err)
	}

	l.logger.Debug("saved linear index", "path", path, "items", len(infos), "written", written)
	return nil
}

// Load replaces the contents with unloaded handles for the manifest under
// path. Signatures are read lazily on first use.
func (l *Linear) Load(ctx context.Context, path string) error {
	if l.opts.Storage == nil {
		return ErrNoStorage
	}

	m, err := l.manifests.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("linear: load manifest %q: %w", path, err)
	}

	items := make([]*index.SigStore, 0, len(m.Signatures))
	for _, info := range m.Signatures {
		if info.Filename == "" {
			return fmt.Errorf("linear: manifest %q: %w", path, index.ErrEmptyFilename)
		}
		items = append(items, info.SigStore(
			index.WithStorage(l.opts.Storage),
			index.WithCodec(l.opts.Codec),
		))
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()

	l.logger.Debug("loaded linear index", "path", path, "items", len(items))
	return nil
}

// Preload materializes every item.
func (l *Linear) Preload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for _, item := range l.SignatureRefs() {
		g.Go(func() error {
			_, err := item.DataContext(gctx)
			return err
		})
	}
	return g.Wait()
}

type scored struct {
	pos   int
	match index.Match
}

// SearchWith scores every item against query with js and returns those js
// keeps, best first. Ties keep insertion order.
//
// Items are scored concurrently and share js, so under best-only the
// threshold rises as better items are found; the result then holds only
// items reaching the final threshold. The first load or compatibility error
// aborts the search.
func (l *Linear) SearchWith(ctx context.Context, js *index.JaccardSearch, query *index.SigStore) ([]index.Match, error) {
	qsig, err := query.DataContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := js.CheckIsCompatible(qsig); err != nil {
		return nil, fmt.Errorf("linear: query: %w", err)
	}
	qmh, err := query.MinHashContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []scored
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for pos, item := range l.SignatureRefs() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sig, err := item.DataContext(gctx)
			if err != nil {
				return err
			}
			if err := js.CheckIsCompatible(sig); err != nil {
				return fmt.Errorf("linear: item %q: %w", item.Filename(), err)
			}
			mh, err := item.MinHashContext(gctx)
			if err != nil {
				return err
			}

			score, err := js.ScoreMinHashes(qmh, mh)
			if err != nil {
				return fmt.Errorf("linear: item %q: %w", item.Filename(), err)
			}

			if js.Passes(score) && js.Collect(score, sig) {
				mu.Lock()
				results = append(results, scored{pos: pos, match: index.Match{Score: score, Item: item}})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if js.BestOnly() {
		final := js.Threshold()
		kept := results[:0]
		for _, r := range results {
			if r.match.Score >= final {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].match.Score != results[j].match.Score {
			return results[i].match.Score > results[j].match.Score
		}
		return results[i].pos < results[j].pos
	})

	matches := make([]index.Match, len(results))
	for i, r := range results {
		matches[i] = r.match
	}

	l.logger.Debug("linear search", "type", js.SearchType(), "items", l.Len(), "matches", len(matches), "threshold", js.Threshold())
	return matches, nil
}
