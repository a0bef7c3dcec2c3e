package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
)

// HashString returns the hex SHA-256 of a string.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashInputs computes the cache input hash for a hook: a deterministic
// digest over the rendered command and the contents of every relevant file.
// Paths are sorted so the hash is independent of event ordering.
func HashInputs(command string, paths []string) (string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "cmd\x00%s\x00", command)
	for _, path := range sorted {
		fileHash, err := HashFile(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "file\x00%s\x00%s\x00", path, fileHash)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
