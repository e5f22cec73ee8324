package catalog

import (
	"fmt"
	"os"

	"github.com/jobala/faharasa/util"
)

// FileNotFoundError is returned when a relation is not registered in the
// catalog, so there is no base file to scan.
type FileNotFoundError struct {
	*util.FaharasaError
}

func NewFileNotFoundError(relation string) *FileNotFoundError {
	return &FileNotFoundError{
		&util.FaharasaError{Message: fmt.Sprintf("relation %s not found", relation)},
	}
}

type Relation struct {
	Name        string
	FileName    string
	RecordCount int
}

// Load reads the catalog file at path, starting empty if it does not
// exist yet.
func Load(path string) (*Catalog, error) {
	c := &Catalog{
		path:      path,
		relations: map[string]Relation{},
	}

	if _, err := os.Stat(path); err != nil {
		return c, nil
	}

	relations, err := util.LoadStruct[map[string]Relation](path)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %s: %v", path, err)
	}

	c.relations = relations
	return c, nil
}

func (c *Catalog) Register(rel Relation) error {
	c.relations[rel.Name] = rel
	return c.Save()
}

func (c *Catalog) Lookup(name string) (Relation, error) {
	rel, ok := c.relations[name]
	if !ok {
		return Relation{}, NewFileNotFoundError(name)
	}

	return rel, nil
}

func (c *Catalog) Save() error {
	return util.SaveStruct(c.path, c.relations)
}

type Catalog struct {
	path      string
	relations map[string]Relation
}
