// Package registry provides a generic thread-safe cache for values indexed
// by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. The
// ruleast Manager keeps one keyed by rule text so repeated evaluations of
// the same rule skip tokenizing and building.
//
// # Basic Usage
//
//	r := registry.New[string, ast.Node]()
//	tree, err := r.GetOrBuild("age > 30", func() (ast.Node, error) {
//	    return parser.Build("age > 30")
//	})
//
// GetOrBuild is atomic: the build function runs at most once per key while
// it succeeds. Failed builds are not cached, so the next call retries.
//
// # Bounded Registries
//
// NewBounded caps the number of entries. When a new key arrives at the cap,
// an arbitrary existing entry is evicted:
//
//	r := registry.NewBounded[string, ast.Node](1024)
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Delete evicts a key so
// its next GetOrBuild builds again.
package registry
