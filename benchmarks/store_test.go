package benchmarks

import (
	"fmt"
	"os"
	"testing"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/parser"
	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

func benchRule(b *testing.B, id string) store.Rule {
	b.Helper()
	tree, err := parser.Build(longChain(50))
	if err != nil {
		b.Fatal(err)
	}
	data, err := ast.Marshal(tree)
	if err != nil {
		b.Fatal(err)
	}
	return store.Rule{ID: id, Name: "bench", Text: longChain(50), Tree: data}
}

func createSQLiteStore(b *testing.B, opts ...store.SQLiteOption) (*store.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	s, err := store.NewSQLiteStore(tmpFile.Name(), opts...)
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return s, func() {
		s.Close()
		os.Remove(tmpFile.Name())
	}
}

// BenchmarkMemoryStore_Save measures in-memory rule save.
func BenchmarkMemoryStore_Save(b *testing.B) {
	s := store.NewMemoryStore()
	r := benchRule(b, "r")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.ID = fmt.Sprint(i % 100)
		_ = s.Save(r)
	}
}

// BenchmarkSQLiteStore_Save measures SQLite rule save, plain and compressed.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	for _, tc := range []struct {
		name string
		opts []store.SQLiteOption
	}{
		{"plain", nil},
		{"zstd", []store.SQLiteOption{store.WithCompression()}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			s, cleanup := createSQLiteStore(b, tc.opts...)
			defer cleanup()
			r := benchRule(b, "r")

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.ID = fmt.Sprint(i % 100)
				_ = s.Save(r)
			}
		})
	}
}

// BenchmarkSQLiteStore_Load measures SQLite rule load, plain and compressed.
func BenchmarkSQLiteStore_Load(b *testing.B) {
	for _, tc := range []struct {
		name string
		opts []store.SQLiteOption
	}{
		{"plain", nil},
		{"zstd", []store.SQLiteOption{store.WithCompression()}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			s, cleanup := createSQLiteStore(b, tc.opts...)
			defer cleanup()
			if err := s.Save(benchRule(b, "r")); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = s.Load("r")
			}
		})
	}
}
