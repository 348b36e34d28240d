// Package hashing computes content fingerprints for deployed files.
//
// Fingerprints are xxhash64 hex digests. They exist to answer one question
// cheaply: "did this file's content change since we last deployed it?" —
// without trusting timestamps.
package hashing

import (
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ChunkSize bounds memory while streaming large files through the digest.
const ChunkSize = 8192

// HashFile returns the hex fingerprint of the file's full content.
// A missing or unreadable file hashes to the empty string, never an error:
// callers treat "" as "nothing deployed here".
func HashFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	digest := xxhash.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return ""
	}

	return hexSum(digest)
}

// HashDirectory returns a fingerprint over every file under dir.
//
// Files are visited in sorted relative-path order and the digest covers
// each relative path string followed by that file's content fingerprint,
// so the result is deterministic regardless of filesystem iteration order.
func HashDirectory(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	var relPaths []string
	files := make(map[string]string)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		relPaths = append(relPaths, rel)
		files[rel] = path
		return nil
	})
	sort.Strings(relPaths)

	digest := xxhash.New()
	for _, rel := range relPaths {
		_, _ = digest.WriteString(rel)
		_, _ = digest.WriteString(HashFile(files[rel]))
	}

	return hexSum(digest)
}

// HashString returns the fingerprint of arbitrary string data.
func HashString(data string) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(data)
	return hexSum(digest)
}

// VerifyFileIntegrity reports whether the file's content matches the
// expected fingerprint.
func VerifyFileIntegrity(path, expectedHash string) bool {
	if expectedHash == "" {
		return false
	}
	return HashFile(path) == expectedHash
}

func hexSum(d *xxhash.Digest) string {
	var sum [8]byte
	b := d.Sum(sum[:0])
	return hex.EncodeToString(b)
}
