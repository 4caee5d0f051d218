package db

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"os"

	"github.com/anstrom/nmapdb/internal/errors"
)

//go:embed schema.sql
var defaultSchema string

// DefaultSchema returns the reference schema shipped with nmapdb.
func DefaultSchema() string {
	return defaultSchema
}

// Schema is a schema definition script read from disk.
type Schema struct {
	Name     string
	Content  string
	Checksum string
}

// LoadSchema reads the schema definition at path. A file that cannot be
// read is reported as a schema failure.
func LoadSchema(path string) (*Schema, error) {
	content, err := os.ReadFile(path) //nolint:gosec // operator supplied schema path
	if err != nil {
		return nil, errors.ErrSchema(path, err)
	}

	return &Schema{
		Name:     path,
		Content:  string(content),
		Checksum: calculateChecksum(string(content)),
	}, nil
}

// calculateChecksum calculates a SHA-256 checksum for schema content.
func calculateChecksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
