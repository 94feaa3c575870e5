package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// chunkSize is the read buffer used when streaming content into the digest.
const chunkSize = 4096

// HashString returns the lowercase hex SHA-256 digest of content.
func HashString(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// HashReader streams r into a SHA-256 digest in fixed-size chunks.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile returns the SHA-256 digest of the file at path. A missing file
// yields an error matching fs.ErrNotExist.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s: %w", path, err)
		}
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	digest, err := HashReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return digest, nil
}

// NormalizeHTML collapses every whitespace run into a single space and trims
// both ends, so reindented markup hashes the same.
func NormalizeHTML(markup string) string {
	return strings.Join(strings.Fields(markup), " ")
}
