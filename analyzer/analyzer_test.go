package analyzer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/depsense/analyzer"
	"github.com/viant/depsense/inspector/classfile/classfiletest"
	"github.com/viant/depsense/inspector/graph"
	"github.com/viant/depsense/inspector/index"
	"github.com/viant/depsense/inspector/info"
	"golang.org/x/sync/errgroup"
)

type fixture struct {
	baseDir string
	classes string
}

func newFixture(t *testing.T) *fixture {
	baseDir := t.TempDir()
	return &fixture{baseDir: baseDir, classes: filepath.Join(baseDir, "app/build/classes")}
}

func (f *fixture) class(t *testing.T, name string, refs ...string) {
	require.NoError(t, classfiletest.WriteFile(filepath.Join(f.classes, name+".class"), classfiletest.SimpleClass(name, refs...)))
}

func (f *fixture) jar(t *testing.T, id graph.ComponentIdentifier, direct bool, classes ...string) *graph.Artifact {
	entries := map[string][]byte{}
	for _, class := range classes {
		entries[class+".class"] = classfiletest.SimpleClass(class)
	}
	location := filepath.Join(f.baseDir, "repo", id.Module+"-"+id.Version+".jar")
	require.NoError(t, classfiletest.WriteArchive(location, entries))
	return &graph.Artifact{ComponentIdentifier: id, File: location, Direct: direct}
}

func newAnalyzer(t *testing.T, options ...analyzer.Option) *analyzer.Analyzer {
	options = append([]analyzer.Option{
		analyzer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		analyzer.WithFileSystem(afs.New()),
	}, options...)
	ret, err := analyzer.New(options...)
	require.NoError(t, err)
	return ret
}

func TestAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("declared library without used class", func(t *testing.T) {
		f := newFixture(t)
		f.class(t, "com/app/App", "com/x/Foo")
		variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
			f.jar(t, libA, true, "com/x/Foo"),
			f.jar(t, libB, true, "com/y/Bar"),
		}}
		actual, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		assert.Equal(t, []string{"com.b:lib-b:1.0"}, actual.Misuse.UnusedDirectDependencies.Strings())
		assert.Empty(t, actual.Misuse.UsedTransitiveDependencies)
		assert.Equal(t, []string{"com.x.Foo", "java.lang.Object"}, actual.UsedClasses.Sorted())
		assert.Empty(t, actual.Diagnostics)
		assert.Equal(t, ":app", actual.Module)
		assert.Equal(t, "debug", actual.Variant)
		assert.NotEmpty(t, actual.RunID)
	})

	t.Run("used class supplied by transitive library", func(t *testing.T) {
		f := newFixture(t)
		f.class(t, "com/app/App", "com/z/Baz")
		variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
			f.jar(t, libA, true, "com/a/A"),
			f.jar(t, libC, false, "com/z/Baz"),
		}}
		actual, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		assert.Equal(t, []string{"com.a:lib-a:1.0"}, actual.Misuse.UnusedDirectDependencies.Strings())
		assert.Equal(t, []string{"com.c:lib-c:1.0"}, actual.Misuse.UsedTransitiveDependencies.Strings())
	})

	t.Run("unreadable class yields partial report", func(t *testing.T) {
		f := newFixture(t)
		f.class(t, "com/app/App", "com/x/Foo")
		require.NoError(t, classfiletest.WriteFile(filepath.Join(f.classes, "com/app/Broken.class"), []byte{0xCA, 0xFE}))
		variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
			f.jar(t, libA, true, "com/x/Foo"),
			f.jar(t, libB, true, "com/y/Bar"),
		}}
		actual, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		require.Len(t, actual.Diagnostics, 1)
		assert.Equal(t, info.KindUnreadableClass, actual.Diagnostics[0].Kind)
		assert.Equal(t, []string{"com.b:lib-b:1.0"}, actual.Misuse.UnusedDirectDependencies.Strings())
	})

	t.Run("explicit declared set overrides direct flags", func(t *testing.T) {
		f := newFixture(t)
		f.class(t, "com/app/App", "com/z/Baz")
		variant := &info.Variant{
			Name:     "release",
			Outputs:  []string{f.classes},
			Declared: []graph.ComponentIdentifier{libC, core},
			Resolved: graph.Artifacts{
				f.jar(t, libA, true, "com/a/A"),
				f.jar(t, libC, false, "com/z/Baz"),
			},
		}
		actual, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		assert.Equal(t, []string{"project :core"}, actual.Misuse.UnusedDirectDependencies.Strings())
		assert.Empty(t, actual.Misuse.UsedTransitiveDependencies)
	})

	t.Run("module without output", func(t *testing.T) {
		f := newFixture(t)
		variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
			f.jar(t, libA, true, "com/a/A"),
		}}
		actual, err := newAnalyzer(t).Analyze(ctx, ":empty", variant)
		require.NoError(t, err)
		assert.Empty(t, actual.UsedClasses)
		assert.Equal(t, []string{"com.a:lib-a:1.0"}, actual.Misuse.UnusedDirectDependencies.Strings())
		require.Len(t, actual.Diagnostics, 1)
		assert.Equal(t, info.KindMissingOutput, actual.Diagnostics[0].Kind)
	})

	t.Run("ambiguous ownership", func(t *testing.T) {
		f := newFixture(t)
		f.class(t, "com/app/App", "com/shared/Util")
		variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
			f.jar(t, libA, true, "com/shared/Util"),
			f.jar(t, libB, false, "com/shared/Util"),
		}}
		actual, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		assert.Empty(t, actual.Misuse.UnusedDirectDependencies)
		assert.Equal(t, []string{"com.b:lib-b:1.0"}, actual.Misuse.UsedTransitiveDependencies.Strings())
		assert.Equal(t, []string{"com.shared.Util"}, actual.Ambiguous)
		require.Len(t, actual.Diagnostics, 1)
		assert.Equal(t, info.LevelInfo, actual.Diagnostics[0].Level)
		assert.Equal(t, "supplied by com.a:lib-a:1.0, com.b:lib-b:1.0", actual.Diagnostics[0].Message)

		quiet, err := newAnalyzer(t, analyzer.WithConfig(&info.Config{})).Analyze(ctx, ":app", variant)
		require.NoError(t, err)
		assert.Empty(t, quiet.Ambiguous)
		assert.Empty(t, quiet.Diagnostics)
		assert.Equal(t, actual.Misuse, quiet.Misuse)
	})
}

func TestAnalyzer_Analyze_MissingArtifact(t *testing.T) {
	f := newFixture(t)
	f.class(t, "com/app/App", "com/x/Foo")
	missing := &graph.Artifact{ComponentIdentifier: libB, File: filepath.Join(f.baseDir, "repo/lib-b-1.0.jar")}
	variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{
		f.jar(t, libA, true, "com/x/Foo"),
		missing,
	}}
	metrics := analyzer.NewMetrics()
	actual, err := newAnalyzer(t, analyzer.WithMetrics(metrics)).Analyze(context.Background(), ":app", variant)
	require.Error(t, err)
	assert.Nil(t, actual)
	var missingErr *index.MissingArtifactError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, libB, missingErr.Artifact.ComponentIdentifier)
	assert.Contains(t, err.Error(), "debug")
	assert.Equal(t, 1.0, counterValue(t, metrics.AnalysesTotal.WithLabelValues("debug", "failure")))
}

func TestAnalyzer_Analyze_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.class(t, "com/app/App", "com/x/Foo")
	variant := &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: graph.Artifacts{f.jar(t, libA, true, "com/x/Foo")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnalyzer(t).Analyze(ctx, ":app", variant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyzer_Analyze_ConcurrentVariants(t *testing.T) {
	f := newFixture(t)
	f.class(t, "com/app/App", "com/x/Foo", "com/z/Baz")
	resolved := graph.Artifacts{
		f.jar(t, libA, true, "com/x/Foo"),
		f.jar(t, libB, true, "com/y/Bar"),
		f.jar(t, libC, false, "com/z/Baz"),
	}
	metrics := analyzer.NewMetrics()
	subject := newAnalyzer(t, analyzer.WithConfig(&info.Config{Concurrency: 2, CacheSize: 16}), analyzer.WithMetrics(metrics))

	names := []string{"debug", "release", "staging", "benchmark"}
	unused := make([][]string, len(names))
	group, ctx := errgroup.WithContext(context.Background())
	for i, name := range names {
		group.Go(func() error {
			actual, err := subject.Analyze(ctx, ":app", &info.Variant{Name: name, Outputs: []string{f.classes}, Resolved: resolved})
			if err != nil {
				return err
			}
			unused[i] = actual.Misuse.UnusedDirectDependencies.Strings()
			return nil
		})
	}
	require.NoError(t, group.Wait())
	for i := range names {
		assert.Equal(t, []string{"com.b:lib-b:1.0"}, unused[i], names[i])
	}

	assert.Equal(t, 1.0, counterValue(t, metrics.ClassesScanned.WithLabelValues("release")))
	assert.Equal(t, 3.0, counterValue(t, metrics.ArtifactsIndexed.WithLabelValues("debug")))
	assert.Equal(t, 1.0, gaugeValue(t, metrics.UsedTransitive.WithLabelValues("staging")))

	hits := counterValue(t, metrics.ListingCacheHits)
	_, err := subject.Analyze(context.Background(), ":app", &info.Variant{Name: "debug", Outputs: []string{f.classes}, Resolved: resolved})
	require.NoError(t, err)
	assert.Equal(t, hits+3, counterValue(t, metrics.ListingCacheHits))

	families, err := metrics.Gather()
	require.NoError(t, err)
	var familyNames []string
	for _, family := range families {
		familyNames = append(familyNames, family.GetName())
	}
	assert.Contains(t, familyNames, "depsense_analysis_duration_seconds")
	assert.Contains(t, familyNames, "depsense_analyses_total")
}

func TestAnalyzer_Analyze_NilVariant(t *testing.T) {
	actual, err := newAnalyzer(t).Analyze(context.Background(), ":app", nil)
	assert.Error(t, err)
	assert.Nil(t, actual)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := analyzer.New(analyzer.WithConfig(&info.Config{Concurrency: -1}))
	assert.Error(t, err)
}

type writableMetric interface {
	Write(*dto.Metric) error
}

func counterValue(t *testing.T, metric writableMetric) float64 {
	var actual dto.Metric
	require.NoError(t, metric.Write(&actual))
	return actual.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, metric writableMetric) float64 {
	var actual dto.Metric
	require.NoError(t, metric.Write(&actual))
	return actual.GetGauge().GetValue()
}
