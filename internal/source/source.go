// Package source loads scenario records from a JSON document or the scenario database.
package source

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OCAP2/globe/internal/model/core"
)

// ErrScenarioNotFound is returned when the requested scenario does not exist
var ErrScenarioNotFound = errors.New("scenario not found")

// Loader produces the map model handed to the converter
type Loader interface {
	Load(ctx context.Context) (core.MapModel, error)
}

// FileLoader reads a {assets, deployments, attacks} JSON document.
// Paths ending in .gz are decompressed.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the document at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load reads and decodes the document.
func (l *FileLoader) Load(ctx context.Context) (core.MapModel, error) {
	if err := ctx.Err(); err != nil {
		return core.MapModel{}, err
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return core.MapModel{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(l.Path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.MapModel{}, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	m, err := Decode(r)
	if err != nil {
		return core.MapModel{}, fmt.Errorf("%s: %w", l.Path, err)
	}
	return m, nil
}

// Decode parses a scenario document. Absent collections decode as empty.
func Decode(r io.Reader) (core.MapModel, error) {
	var m core.MapModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return core.MapModel{}, fmt.Errorf("decode scenario: %w", err)
	}
	if m.Assets == nil {
		m.Assets = []core.AssetForCesium{}
	}
	if m.Deployments == nil {
		m.Deployments = []core.DeploymentForCesium{}
	}
	if m.Attacks == nil {
		m.Attacks = []core.AttackForCesium{}
	}
	return m, nil
}
