package code_analyzer

import (
	"math/rand"
	"testing"
)

// BenchmarkCacheKeyGeneration measures key derivation for random paths.
func BenchmarkCacheKeyGeneration(b *testing.B) {
	fc := &FileCache{cacheDir: b.TempDir()}

	filePaths := make([]string, 1000)
	charset := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/_-."
	for i := range filePaths {
		length := rand.Intn(100) + 20
		path := make([]byte, length)
		for j := range path {
			path[j] = charset[rand.Intn(len(charset))]
		}
		filePaths[i] = "/" + string(path) + ".cpp"
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = fc.generateCacheKey(filePaths[i%len(filePaths)], "tolerant=false|")
	}
}

// BenchmarkRealWorldFilePaths uses paths typical of a C++ project layout.
func BenchmarkRealWorldFilePaths(b *testing.B) {
	fc := &FileCache{cacheDir: b.TempDir()}
	realPaths := []string{
		"/work/project/src/main.cpp",
		"/work/project/src/buffer_manager.cpp",
		"/work/project/include/buffer_manager.hpp",
		"/work/project/include/config.h",
		"/work/project/src/legacy/parser.c",
		"/home/dev/long/path/to/some/deeply/nested/module/in/a/big/tree/structure.cpp",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = fc.generateCacheKey(realPaths[i%len(realPaths)], "tolerant=true|-I/usr/include")
	}
}

func TestCacheKeyConsistency(t *testing.T) {
	fc := &FileCache{cacheDir: t.TempDir()}
	path := "/work/project/src/main.cpp"

	first := fc.generateCacheKey(path, "v")
	for i := 0; i < 100; i++ {
		if got := fc.generateCacheKey(path, "v"); got != first {
			t.Fatalf("cache key changed: %s != %s", got, first)
		}
	}
	if fc.generateCacheKey(path, "w") == first {
		t.Fatal("variant must be part of the cache key")
	}
}
