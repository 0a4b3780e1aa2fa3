package writer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// YAMLWriter writes the table as a list of records. Decimals are written as
// quoted text so no precision is lost.
type YAMLWriter struct{}

// Write implements Writer.
func (w *YAMLWriter) Write(table *types.Table, destination string) error {
	if err := ensureParent(destination); err != nil {
		return err
	}

	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range table.Rows {
		record := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, col := range table.Columns {
			record.Content = append(record.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
				scalarNode(row.Get(col)),
			)
		}
		doc.Content = append(doc.Content, record)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := os.WriteFile(destination, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func scalarNode(v types.Value) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	switch v.Kind() {
	case types.KindNull:
		node.Tag, node.Value = "!!null", "null"
	case types.KindInt:
		node.Tag = "!!int"
	case types.KindFloat:
		node.Tag = "!!float"
	case types.KindBool:
		node.Tag = "!!bool"
	case types.KindTime:
		t, _ := v.TimeValue()
		node.Tag, node.Value = "!!timestamp", t.Format(time.RFC3339Nano)
	default:
		node.Tag = "!!str"
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}
