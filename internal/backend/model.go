package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/pipeline"
)

// Model is the serialized form of a validated program.
type Model struct {
	BuildID      string              `yaml:"build_id"`
	Entry        string              `yaml:"entry"`
	Files        []string            `yaml:"files"`
	Dependencies map[string][]string `yaml:"dependencies,omitempty"`
	Imports      []ImportModel       `yaml:"imports,omitempty"`
	Functions    []FunctionModel     `yaml:"functions"`
}

type ImportModel struct {
	Location string `yaml:"location"`
	Kind     string `yaml:"kind"`
}

type FunctionModel struct {
	Name      string       `yaml:"name"`
	File      string       `yaml:"file"`
	Public    bool         `yaml:"public,omitempty"`
	Signature string       `yaml:"signature"`
	Params    []ParamModel `yaml:"params,omitempty"`
	Returns   string       `yaml:"returns"`
	Trace     string       `yaml:"trace"`
}

type ParamModel struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// BuildModel flattens the program in ctx. Types are rendered in their
// canonical written form.
func BuildModel(ctx *pipeline.PipelineContext) (*Model, error) {
	fc := ctx.Program
	if fc == nil {
		return nil, fmt.Errorf("no program to emit")
	}

	m := &Model{
		BuildID:      fc.BuildID,
		Entry:        fc.Path,
		Files:        ctx.Files,
		Dependencies: ctx.Dependencies,
	}
	for _, imp := range fc.Imports {
		m.Imports = append(m.Imports, ImportModel{Location: imp.Location, Kind: imp.Kind.String()})
	}
	for _, fn := range fc.Functions {
		f, err := functionModel(fn)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, f)
	}
	return m, nil
}

func functionModel(fn *ast.Function) (FunctionModel, error) {
	returns, err := fn.Returns()
	if err != nil {
		return FunctionModel{}, err
	}
	f := FunctionModel{
		Name:      fn.Name,
		File:      fn.File,
		Public:    fn.Public,
		Signature: fn.Signature(),
		Returns:   returns.String(),
		Trace:     fn.Trace,
	}
	for _, p := range fn.Params {
		pt, err := p.ParamType()
		if err != nil {
			return FunctionModel{}, err
		}
		f.Params = append(f.Params, ParamModel{Name: p.Name, Type: pt.String()})
	}
	return f, nil
}

// ModelWriter is a Backend that writes the program model as YAML. The file
// is replaced atomically, so a failed run never leaves a partial model.
type ModelWriter struct {
	Path string
}

func NewModelWriter(path string) *ModelWriter {
	return &ModelWriter{Path: path}
}

func (w *ModelWriter) Name() string {
	return "model"
}

func (w *ModelWriter) Emit(ctx *pipeline.PipelineContext) error {
	m, err := BuildModel(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return writeFileAtomic(w.Path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".surf-model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.Write(data); err != nil {
		writeErr = fmt.Errorf("write temp model file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp model file %q: %w", tmpName, err)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace model file %q: %w", path, err)
	}
	return nil
}
