package gateway

import (
	"encoding/json"

	"leadconsole/internal/query"
)

// Response is the wire shape of a query result: {"<dataKey>": [...], "total": n}.
type Response[T any] struct {
	DataKey string
	Items   []T
	Total   int
}

func NewResponse[T any](dataKey string, res query.Result[T]) Response[T] {
	return Response[T]{DataKey: dataKey, Items: res.Items, Total: res.Total}
}

func (r Response[T]) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(map[string]any{
		r.DataKey: items,
		"total":   r.Total,
	})
}
