// Package refcat reads the static reference catalog of maser sources.
package refcat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"mcat-go/internal/mcat"
)

// columns names the positional fields of a catalog line. Extra fields are
// ignored; the second column is not used.
var columns = []string{"name", "alias", "ra", "dec", "vsys"}

type row struct {
	Name  string `csv:"name"`
	RA    string `csv:"ra"`
	Dec   string `csv:"dec"`
	VSys  string `csv:"vsys"`
	Alias string `csv:"alias"`
}

func (r *row) entry() (*mcat.CatalogEntry, error) {
	vsys, err := strconv.ParseFloat(r.VSys, 64)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s: invalid systemic velocity %q", r.Name, r.VSys)
	}
	return &mcat.CatalogEntry{
		FullName:         r.Name,
		RADigits:         r.RA,
		DecDigits:        r.Dec,
		SystemicVelocity: vsys,
	}, nil
}

// Catalog is a space-delimited reference catalog file. The file is read on
// every call so edits are picked up without restarting.
type Catalog struct {
	path string
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

var _ mcat.ReferenceCatalog = (*Catalog)(nil)

// Lookup returns the first entry named fullName, or nil if there is none.
func (c *Catalog) Lookup(fullName string) (*mcat.CatalogEntry, error) {
	rows, err := c.read()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Name == fullName {
			return rows[i].entry()
		}
	}
	return nil, nil
}

func (c *Catalog) Entries() ([]*mcat.CatalogEntry, error) {
	rows, err := c.read()
	if err != nil {
		return nil, err
	}
	entries := make([]*mcat.CatalogEntry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Catalog) read() ([]row, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening reference catalog: %w", err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading reference catalog %s: %w", c.path, err)
	}
	return rows, nil
}

// parse decodes catalog lines from r.
func parse(r io.Reader) ([]row, error) {
	dec, err := csvutil.NewDecoder(newFieldReader(r), columns...)
	if err != nil {
		return nil, fmt.Errorf("creating catalog decoder: %w", err)
	}

	var rows []row
	for {
		var rw row
		if err := dec.Decode(&rw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

// fieldReader splits whitespace-separated lines into exactly len(columns)
// fields, as csvutil expects. Blank lines and '#' comments are skipped.
type fieldReader struct {
	scanner *bufio.Scanner
}

func newFieldReader(r io.Reader) *fieldReader {
	return &fieldReader{scanner: bufio.NewScanner(r)}
}

func (fr *fieldReader) Read() ([]string, error) {
	for fr.scanner.Scan() {
		fields := strings.Fields(fr.scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		record := make([]string, len(columns))
		copy(record, fields)
		return record, nil
	}
	if err := fr.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
