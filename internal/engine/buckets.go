package engine

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/buckets.yaml
var defaultBuckets []byte

// BucketMap collapses raw category values into display buckets, per column.
type BucketMap map[string]map[string]string

// DefaultBuckets returns the bucket table shipped with the binary.
func DefaultBuckets() (BucketMap, error) {
	return ParseBuckets(defaultBuckets)
}

// ParseBuckets decodes a YAML bucket table.
func ParseBuckets(b []byte) (BucketMap, error) {
	var m BucketMap
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse bucket map: %w", err)
	}
	return m, nil
}

// Columns returns the bucketed column names, sorted.
func (m BucketMap) Columns() []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Apply maps a raw value of column to its bucket. A value that is already a
// bucket name maps to itself, so Apply is idempotent.
func (m BucketMap) Apply(column, value string) (string, error) {
	table, ok := m[column]
	if !ok {
		return value, nil
	}
	if b, ok := table[value]; ok {
		return b, nil
	}
	for _, b := range table {
		if b == value {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%q", ErrUnmappedCategory, column, value)
}

// bucketColumn rewrites the dictionary of a string column in place and
// re-encodes duplicate buckets. Only used while a table is still being built.
func (m BucketMap) bucketColumn(c *Column) error {
	if _, ok := m[c.Name]; !ok {
		return nil
	}
	remap := make([]int32, len(c.Dict))
	index := make(map[string]int32, len(c.Dict))
	dict := make([]string, 0, len(c.Dict))
	for id, raw := range c.Dict {
		b, err := m.Apply(c.Name, raw)
		if err != nil {
			return err
		}
		nid, ok := index[b]
		if !ok {
			nid = int32(len(dict))
			dict = append(dict, b)
			index[b] = nid
		}
		remap[id] = nid
	}
	for i, id := range c.IDs {
		c.IDs[i] = remap[id]
	}
	c.Dict = dict
	return nil
}
