package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"coreobject/internal/logging"
)

// maxParallelDecode bounds concurrent file reads.
const maxParallelDecode = 8

// IsDefinitionFile reports whether path names a YAML definition file.
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Expand resolves paths to definition files. Directories contribute their
// *.yaml and *.yml entries (not recursively) in name order.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.IsDir() && IsDefinitionFile(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return slices.Compact(files), nil
}

// LoadFiles decodes every definition file found under paths, in parallel.
// Documents are returned in file order.
func LoadFiles(ctx context.Context, paths []string) ([]*Document, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategorySchema, fmt.Sprintf("decode %d files", len(files)))
	defer timer.Stop()

	docs := make([]*Document, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelDecode)

	for i, file := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(file)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadFile decodes one definition file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.setSource(path)
	logging.SchemaDebug("decoded %s: %d types", path, len(doc.Types))
	return doc, nil
}

// Parse decodes a definition document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}
	return doc, nil
}

func (d *Document) setSource(path string) {
	d.Source = path
	for i := range d.Types {
		d.Types[i].source = path
	}
}
