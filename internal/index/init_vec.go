// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// sqlite-vec provides vec_distance_cosine for nearest-neighbor queries.
	// vec.Auto() registers it as an auto-loadable extension, so every
	// sqlite3 connection opened by this package has it available.
	vec.Auto()
}
