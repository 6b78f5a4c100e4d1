package loader

import (
	"encoding/json"
	"fmt"
)

// parseJSON reads a JSON catalog: either a bare product array or an object
// wrapping one under a "products" key. Warnings carry 1-based array positions.
func parseJSON(data []byte) ([]row, error) {
	var docs []productDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		var wrapped struct {
			Products []productDoc `json:"products"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Products == nil {
			return nil, fmt.Errorf("invalid catalog document: %w", err)
		}
		docs = wrapped.Products
	}

	rows := make([]row, 0, len(docs))
	for i := range docs {
		rows = append(rows, row{number: i + 1, doc: &docs[i]})
	}
	return rows, nil
}
