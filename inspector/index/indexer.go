package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/depsense/inspector/graph"
	"github.com/viant/depsense/inspector/info"
	"github.com/viant/depsense/inspector/repository"
	"golang.org/x/sync/errgroup"
)

// MissingArtifactError reports an artifact whose file does not exist, the analysis input is inconsistent
type MissingArtifactError struct {
	Artifact *graph.Artifact
	Err      error
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("artifact %v: file %v not found", e.Artifact.ComponentIdentifier, e.Artifact.File)
}

func (e *MissingArtifactError) Unwrap() error {
	return e.Err
}

// Index represents class ownership of a resolved dependency closure
type Index struct {
	Ownership *graph.ClassOwnership
	Artifacts int // artifacts listed
	Classes   int // class entries registered, duplicates included
	CacheHits int // artifacts served from listing cache
}

// Indexer builds class ownership of resolved artifacts; safe for concurrent use
type Indexer struct {
	config     *info.Config
	repository *repository.Repository
	cache      *lru.Cache[uint64, []string]
	logger     *slog.Logger
}

// NewIndexer creates an indexer, listings of archives are cached when config.CacheSize > 0
func NewIndexer(config *info.Config, repo *repository.Repository, logger *slog.Logger) (*Indexer, error) {
	if config == nil {
		config = info.DefaultConfig()
	}
	if repo == nil {
		repo = repository.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	ret := &Indexer{config: config, repository: repo, logger: logger}
	if config.CacheSize > 0 {
		cache, err := lru.New[uint64, []string](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create listing cache: %w", err)
		}
		ret.cache = cache
	}
	return ret, nil
}

// Index lists every artifact and registers its classes. A missing artifact file returns *MissingArtifactError.
func (i *Indexer) Index(ctx context.Context, artifacts graph.Artifacts) (*Index, error) {
	listings := make([][]string, len(artifacts))
	var cacheHits atomic.Int32
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.config.Workers())
	for index, artifact := range artifacts {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			names, cached, err := i.list(groupCtx, artifact)
			if err != nil {
				return err
			}
			if cached {
				cacheHits.Add(1)
			}
			listings[index] = names
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	ret := &Index{Ownership: graph.NewClassOwnership(), Artifacts: len(artifacts), CacheHits: int(cacheHits.Load())}
	for index, artifact := range artifacts {
		ret.Ownership.RegisterAll(artifact.ComponentIdentifier, listings[index])
		ret.Classes += len(listings[index])
	}
	return ret, nil
}

func (i *Indexer) list(ctx context.Context, artifact *graph.Artifact) ([]string, bool, error) {
	kind, fileInfo, err := i.repository.Detect(ctx, artifact.File)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, &MissingArtifactError{Artifact: artifact, Err: err}
		}
		return nil, false, err
	}
	var key uint64
	cacheable := i.cache != nil && (kind == repository.KindArchive || kind == repository.KindAndroidArchive)
	if cacheable {
		if key, err = graph.Fingerprint(artifact.File, fileInfo); err != nil {
			return nil, false, err
		}
		if names, ok := i.cache.Get(key); ok {
			return names, true, nil
		}
	}
	container, err := i.repository.Open(ctx, artifact.File)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, &MissingArtifactError{Artifact: artifact, Err: err}
		}
		return nil, false, fmt.Errorf("failed to index %v: %w", artifact.ComponentIdentifier, err)
	}
	defer container.Close()
	names := container.ClassNames()
	i.logger.DebugContext(ctx, "indexed artifact", "component", artifact.ComponentIdentifier.String(), "kind", container.Kind, "classes", len(names))
	if cacheable {
		i.cache.Add(key, names)
	}
	return names, false, nil
}
