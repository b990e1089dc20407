package inspector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/viant/depsense/inspector/classfile"
	"github.com/viant/depsense/inspector/graph"
	"github.com/viant/depsense/inspector/info"
	"github.com/viant/depsense/inspector/repository"
	"golang.org/x/sync/errgroup"
)

// Extraction represents classes referenced by a module's compiled output
type Extraction struct {
	Used        graph.ClassSet // classes referenced from outside the module
	Own         graph.ClassSet // classes defined by the module output
	Scanned     int            // class files parsed successfully
	Diagnostics info.Diagnostics
}

// Unreadable returns number of class files skipped as unreadable
func (e *Extraction) Unreadable() int {
	count := 0
	for _, diagnostic := range e.Diagnostics {
		if diagnostic.Kind == info.KindUnreadableClass {
			count++
		}
	}
	return count
}

// Inspector extracts external class references from compiled output
type Inspector struct {
	config     *info.Config
	repository *repository.Repository
	logger     *slog.Logger
}

// NewInspector creates an inspector
func NewInspector(config *info.Config, repo *repository.Repository, logger *slog.Logger) *Inspector {
	if config == nil {
		config = info.DefaultConfig()
	}
	if repo == nil {
		repo = repository.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{config: config, repository: repo, logger: logger}
}

type classResult struct {
	name       string
	references graph.ClassSet
	diagnostic *info.Diagnostic
}

// Inspect parses every class file of supplied output locations. Unreadable class files and missing
// output locations are reported as diagnostics; an output that cannot be listed fails the inspection.
func (i *Inspector) Inspect(ctx context.Context, outputs []string) (*Extraction, error) {
	ret := &Extraction{Used: make(graph.ClassSet), Own: make(graph.ClassSet)}
	var entries []*repository.Entry
	for _, output := range outputs {
		container, err := i.repository.Open(ctx, output)
		if errors.Is(err, repository.ErrNotFound) {
			ret.Diagnostics = append(ret.Diagnostics, info.NewWarning(info.KindMissingOutput, output, err))
			i.logger.WarnContext(ctx, "compiled output not found", "location", output)
			continue
		}
		if err != nil {
			return nil, err
		}
		defer container.Close()
		i.logger.DebugContext(ctx, "scanning compiled output", "location", output, "kind", container.Kind, "classes", len(container.Entries))
		for _, entry := range container.Entries {
			if entry.ClassName != "" {
				ret.Own.Add(entry.ClassName)
			}
		}
		entries = append(entries, container.Entries...)
	}

	results := make([]classResult, len(entries))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.config.Workers())
	for index, entry := range entries {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[index] = i.inspectEntry(entry)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, result := range results {
		if result.diagnostic != nil {
			ret.Diagnostics = append(ret.Diagnostics, result.diagnostic)
			i.logger.WarnContext(ctx, "skipping unreadable class file", "path", result.diagnostic.Path, "error", result.diagnostic.Message)
			continue
		}
		ret.Scanned++
		ret.Own.Add(result.name)
		ret.Used.AddAll(result.references)
	}
	ret.Used.Remove(ret.Own)
	for name := range ret.Used {
		if classfile.IsDescriptorClass(name) {
			delete(ret.Used, name)
		}
	}
	ret.Diagnostics.Sort()
	return ret, nil
}

func (i *Inspector) inspectEntry(entry *repository.Entry) classResult {
	data, err := entry.Read()
	if err != nil {
		return classResult{diagnostic: info.NewWarning(info.KindUnreadableClass, entry.Location, err)}
	}
	classFile, err := classfile.Parse(data, classfile.WithMaxMajorVersion(i.config.MaxMajorVersion))
	if err != nil {
		return classResult{diagnostic: info.NewWarning(info.KindUnreadableClass, entry.Location, err)}
	}
	return classResult{name: classFile.Name, references: classFile.References}
}
