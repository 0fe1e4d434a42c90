package storage

import "fmt"

var (
	// ErrNotFound is returned when no blob exists under the requested name.
	ErrNotFound = fmt.Errorf("blob not found")
)

// Store persists named binary blobs. Implementations must be safe for
// concurrent use and must make Save atomic: readers observe either the
// previous blob or the new one, never a partial write.
type Store interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	Delete(name string) error
	List() ([]string, error)
}
