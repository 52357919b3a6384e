package typegraph

import "errors"

var (
	ErrMissingRoot   = errors.New("root item not found in index")
	ErrRootNotModule = errors.New("root item is not a module")
)
