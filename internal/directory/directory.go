// Package directory lists the Canny company directory into an ordered,
// name-keyed collection.
package directory

import (
	"github.com/sells-group/mrr-sync/pkg/canny"
)

// Directory is an insertion-ordered collection of companies keyed by name.
// Setting an existing name replaces the company but keeps its position.
type Directory struct {
	names  []string
	byName map[string]canny.Company
}

// New creates an empty Directory.
func New() *Directory {
	return &Directory{byName: make(map[string]canny.Company)}
}

// Set stores c under its name. It reports whether an earlier company with
// the same name was replaced.
func (d *Directory) Set(c canny.Company) bool {
	_, exists := d.byName[c.Name]
	if !exists {
		d.names = append(d.names, c.Name)
	}
	d.byName[c.Name] = c
	return exists
}

// Get returns the company stored under name.
func (d *Directory) Get(name string) (canny.Company, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Names returns company names in first-insertion order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of distinct names.
func (d *Directory) Len() int {
	return len(d.names)
}

// Each calls fn for every company in order.
func (d *Directory) Each(fn func(canny.Company)) {
	for _, name := range d.names {
		fn(d.byName[name])
	}
}
