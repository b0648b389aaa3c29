// Package demographics loads the countries.csv catalog that backs the
// analysis page's country, city, and age dropdowns.
package demographics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
)

// Expected catalog columns. Extra columns are ignored.
const (
	colCountry  = "Country"
	colCity     = "City"
	colCurrency = "Currency_Code"
	colNumber   = "Number"
)

// Row is one catalog entry.
type Row struct {
	Country      string
	City         string
	CurrencyCode string
	Number       int
}

// Catalog is an in-memory, reloadable view of the demographics CSV.
type Catalog struct {
	path string

	mu   sync.RWMutex
	rows []Row
}

// Load reads the catalog from path. The file must carry the
// Country,City,Currency_Code,Number header; rows whose Number column is not
// numeric are skipped rather than failing the whole load.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file, replacing the rows atomically. On error
// the previous rows remain in place.
func (c *Catalog) Reload() error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("demographics: open catalog: %w", err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.rows = rows
	c.mu.Unlock()
	return nil
}

func parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("demographics: read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colCountry, colCity, colCurrency, colNumber} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("demographics: catalog is missing column %q", required)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("demographics: read row: %w", err)
		}

		number, err := strconv.Atoi(record[idx[colNumber]])
		if err != nil {
			continue // non-numeric Number, skip the row
		}

		rows = append(rows, Row{
			Country:      record[idx[colCountry]],
			City:         record[idx[colCity]],
			CurrencyCode: record[idx[colCurrency]],
			Number:       number,
		})
	}

	return rows, nil
}

// Countries returns the sorted, deduplicated country names.
func (c *Catalog) Countries() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]struct{}{}
	var out []string
	for _, row := range c.rows {
		if row.Country == "" {
			continue
		}
		if _, ok := seen[row.Country]; ok {
			continue
		}
		seen[row.Country] = struct{}{}
		out = append(out, row.Country)
	}
	sort.Strings(out)
	return out
}

// Cities returns the sorted, deduplicated city names for a country.
func (c *Catalog) Cities(country string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]struct{}{}
	var out []string
	for _, row := range c.rows {
		if row.Country != country || row.City == "" {
			continue
		}
		if _, ok := seen[row.City]; ok {
			continue
		}
		seen[row.City] = struct{}{}
		out = append(out, row.City)
	}
	sort.Strings(out)
	return out
}

// Ages returns the sorted, deduplicated values of the Number column.
func (c *Catalog) Ages() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[int]struct{}{}
	var out []int
	for _, row := range c.rows {
		if _, ok := seen[row.Number]; ok {
			continue
		}
		seen[row.Number] = struct{}{}
		out = append(out, row.Number)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of loaded rows.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
