// =============================================================================
// Deal Pipeline - YAML Parser
// =============================================================================
//
// This module parses a YAML document holding a list of records into a
// single table.
//
// DOCUMENT LAYOUT:
//   - DealName: Airbus
//     D1: "129389.32"
//     IsActive: "Yes"
//   - DealName: Boeing
//     ...
//
// The column set is the union of record keys in first-seen order. A key
// missing from a record reads as null. Scalars keep their YAML type
// (quoted text stays text, plain numbers become numbers).
//
// =============================================================================

package yamlparser

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// Parse reads a YAML file into a table.
func Parse(filePath string, converters types.Converters) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, converters)
}

// ParseReader reads YAML content from r into a table.
func ParseReader(r io.Reader, converters types.Converters) (*types.Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return types.NewTable(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return types.NewTable(), nil
		}
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return types.NewTable(), nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of records", root.Line)
	}

	table := types.NewTable()
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: record is not a mapping", item.Line)
		}

		fields := make(map[string]types.Value, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := item.Content[i].Value
			value, err := decodeScalar(item.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: column '%s': %w", item.Content[i+1].Line, key, err)
			}
			if !table.HasColumn(key) {
				table.Columns = append(table.Columns, key)
			}
			fields[key] = converters.Apply(key, value)
		}
		table.Rows = append(table.Rows, types.Row{
			No:     len(table.Rows) + types.RowNoOffset,
			Fields: fields,
		})
	}

	table.LiftRowNo()
	return table, nil
}

// decodeScalar converts a YAML node into a cell value.
func decodeScalar(node *yaml.Node) (types.Value, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return types.Null(), nil
	}

	var x any
	if err := node.Decode(&x); err != nil {
		return types.Null(), err
	}
	return types.FromAny(x), nil
}
