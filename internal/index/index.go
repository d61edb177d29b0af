package index

import (
	"time"

	"github.com/starford/raido/internal/models"
)

// ProjectIndex defines the interface for index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type ProjectIndex interface {
	UpsertProject(p ProjectRow, body string) error
	DeleteProject(path string) error
	GetProject(path string) (*ProjectRow, error)
	GetChecksum(path string) (string, error)
	ListProjects(opts ListOptions) ([]ProjectRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)

	SavePin(p models.Pin) error
	GetPin(id string) (*models.Pin, error)
	ListPins(state string) ([]models.Pin, error)
	PinsForPath(path string) ([]models.Pin, error)
	UpdatePinResolution(id, state string, line int, checkedAt time.Time) error
	DeletePin(id string) error

	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
