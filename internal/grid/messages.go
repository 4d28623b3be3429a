package grid

import "leadconsole/internal/query"

// Messages carry the data key so two grids in one program ignore each other's traffic.

type filterTickMsg struct {
	dataKey string
	field   string
	seq     int
}

type fetchedMsg[T any] struct {
	dataKey string
	seq     int
	res     query.Result[T]
	err     error
}
