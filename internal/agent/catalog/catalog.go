// Package catalog loads the read-only tables that drive classification,
// dialogue flow and retrieval. The default tables are embedded; a directory
// with the same file names can replace them.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

const (
	LexiconFile   = "lexicon.yaml"
	StatesFile    = "states.yaml"
	KnowledgeFile = "knowledge.yaml"
)

//go:embed data/*.yaml
var embedded embed.FS

// Embedded returns the built-in tables.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Catalog bundles the three tables.
type Catalog struct {
	Lexicon   *Lexicon
	States    *States
	Knowledge *Knowledge
}

// Load reads and checks every table in fsys. All problems are reported
// together.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		c    Catalog
		errs []error
		err  error
	)

	if c.Lexicon, err = loadFile(fsys, LexiconFile, ParseLexicon); err != nil {
		errs = append(errs, err)
	}
	if c.States, err = loadFile(fsys, StatesFile, ParseStates); err != nil {
		errs = append(errs, err)
	}
	if c.Knowledge, err = loadFile(fsys, KnowledgeFile, ParseKnowledge); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &c, nil
}

// LoadEmbedded is Load over the built-in tables.
func LoadEmbedded() (*Catalog, error) {
	return Load(Embedded())
}

func loadFile[T any](fsys fs.FS, name string, parse func([]byte) (*T, error)) (*T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errx.WrapConfig(name, err)
	}
	return parse(data)
}

// decodeStrict rejects unknown keys so a typo in a table is a load error.
func decodeStrict(name string, data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errx.WrapConfig(name, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func checkIntent(owner string, i model.Intent) error {
	if i == "" {
		return fmt.Errorf("%s: empty intent", owner)
	}
	return nil
}
