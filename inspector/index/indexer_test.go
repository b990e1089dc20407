package index_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/depsense/inspector/classfile/classfiletest"
	"github.com/viant/depsense/inspector/graph"
	"github.com/viant/depsense/inspector/index"
	"github.com/viant/depsense/inspector/info"
	"github.com/viant/depsense/inspector/repository"
)

func TestIndexer_Index(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	okio := filepath.Join(baseDir, "okio-3.9.0.jar")
	require.NoError(t, classfiletest.WriteArchive(okio, map[string][]byte{
		"okio/Buffer.class":                   nil,
		"okio/Buffer$UnsafeCursor.class":      nil,
		"META-INF/versions/9/okio/Utf8.class": nil,
		"META-INF/MANIFEST.MF":                []byte("Manifest-Version: 1.0\n"),
		"module-info.class":                   nil,
		"okio/package-info.class":             nil,
	}))
	shaded := filepath.Join(baseDir, "shaded-1.0.jar")
	require.NoError(t, classfiletest.WriteArchive(shaded, map[string][]byte{
		"okio/Buffer.class": nil,
	}))
	empty := filepath.Join(baseDir, "annotations-only.jar")
	require.NoError(t, classfiletest.WriteArchive(empty, map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
	}))
	coreClasses := filepath.Join(baseDir, "core/classes")
	require.NoError(t, classfiletest.WriteFile(filepath.Join(coreClasses, "com/core/Core.class"), nil))

	okioID := graph.Library("com.squareup.okio", "okio", "3.9.0")
	shadedID := graph.Library("com.acme", "shaded", "1.0")
	emptyID := graph.Library("org.jetbrains", "annotations", "13.0")
	coreID := graph.Project(":core")
	artifacts := graph.Artifacts{
		{ComponentIdentifier: okioID, File: okio, Direct: true},
		{ComponentIdentifier: shadedID, File: shaded},
		{ComponentIdentifier: emptyID, File: empty},
		{ComponentIdentifier: coreID, File: coreClasses, Direct: true},
	}

	indexer, err := index.NewIndexer(&info.Config{Concurrency: 2, CacheSize: 8}, repository.New(nil), nil)
	require.NoError(t, err)
	actual, err := indexer.Index(ctx, artifacts)
	require.NoError(t, err)

	assert.Equal(t, 4, actual.Artifacts)
	assert.Equal(t, 5, actual.Classes)
	assert.Equal(t, 0, actual.CacheHits)
	assert.Equal(t, []string{
		"com.core.Core",
		"okio.Buffer",
		"okio.Buffer$UnsafeCursor",
		"okio.Utf8",
	}, actual.Ownership.Classes().Sorted())
	assert.Equal(t, []string{"com.acme:shaded:1.0", "com.squareup.okio:okio:3.9.0"}, actual.Ownership.Owners("okio.Buffer").Strings())
	assert.Equal(t, []string{"okio.Buffer"}, actual.Ownership.Ambiguous())
	assert.True(t, actual.Ownership.Owners("com.core.Core").Contains(coreID))
	assert.Nil(t, actual.Ownership.Owners("java.lang.String"))

	again, err := indexer.Index(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, 3, again.CacheHits, "archives are served from cache, directories are listed again")
	assert.Equal(t, actual.Ownership.Classes(), again.Ownership.Classes())
}

func TestIndexer_Index_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "lib.jar")
	require.NoError(t, classfiletest.WriteArchive(location, map[string][]byte{"com/lib/A.class": nil}))
	artifacts := graph.Artifacts{{ComponentIdentifier: graph.Library("com.lib", "lib", "1"), File: location}}

	indexer, err := index.NewIndexer(&info.Config{CacheSize: 4}, nil, nil)
	require.NoError(t, err)
	first, err := indexer.Index(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.lib.A"}, first.Ownership.Classes().Sorted())

	require.NoError(t, classfiletest.WriteArchive(location, map[string][]byte{"com/lib/A.class": nil, "com/lib/B.class": nil}))
	second, err := indexer.Index(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CacheHits)
	assert.Equal(t, []string{"com.lib.A", "com.lib.B"}, second.Ownership.Classes().Sorted())
}

func TestIndexer_Index_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "lib.jar")
	require.NoError(t, classfiletest.WriteArchive(location, map[string][]byte{"com/lib/A.class": nil}))
	artifacts := graph.Artifacts{{ComponentIdentifier: graph.Library("com.lib", "lib", "1"), File: location}}

	indexer, err := index.NewIndexer(&info.Config{}, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		actual, err := indexer.Index(ctx, artifacts)
		require.NoError(t, err)
		assert.Equal(t, 0, actual.CacheHits)
		assert.Equal(t, 1, actual.Classes)
	}
}

func TestIndexer_Index_MissingArtifact(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	present := filepath.Join(baseDir, "present.jar")
	require.NoError(t, classfiletest.WriteArchive(present, map[string][]byte{"com/a/A.class": nil}))
	missing := &graph.Artifact{ComponentIdentifier: graph.Library("com.b", "b", "2.0"), File: filepath.Join(baseDir, "b-2.0.jar")}

	indexer, err := index.NewIndexer(nil, nil, nil)
	require.NoError(t, err)
	_, err = indexer.Index(ctx, graph.Artifacts{
		{ComponentIdentifier: graph.Library("com.a", "a", "1.0"), File: present},
		missing,
	})
	require.Error(t, err)
	var missingErr *index.MissingArtifactError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, missing, missingErr.Artifact)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "com.b:b:2.0")
}

func TestIndexer_Index_CorruptArtifact(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "corrupt.jar")
	require.NoError(t, os.WriteFile(location, []byte("not a zip"), 0o644))

	indexer, err := index.NewIndexer(nil, nil, nil)
	require.NoError(t, err)
	_, err = indexer.Index(ctx, graph.Artifacts{{ComponentIdentifier: graph.Library("com.c", "c", "1"), File: location}})
	require.Error(t, err)
	var missingErr *index.MissingArtifactError
	assert.False(t, errors.As(err, &missingErr))
}

func TestIndexer_Index_Empty(t *testing.T) {
	indexer, err := index.NewIndexer(nil, nil, nil)
	require.NoError(t, err)
	actual, err := indexer.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, actual.Ownership.Len())
}
