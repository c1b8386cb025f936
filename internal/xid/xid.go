package xid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns prefix_<uuid without dashes>. An empty prefix yields the bare id.
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
