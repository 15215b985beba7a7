// Package catalog holds the read-only view of catalogued individuals
// that the matching pipeline consumes. Rows are created by the
// cataloguing workflow; this package never mutates them.
package catalog

import "github.com/google/uuid"

// Entity is one catalogued individual: a stable integer id, the opaque
// UUID used as the embedding owner key, and the canonical photo the
// individual is identified by.
type Entity struct {
	id        int64
	owner     uuid.UUID
	photoPath string
}

// NewEntity creates a new Entity.
func NewEntity(id int64, owner uuid.UUID, photoPath string) Entity {
	return Entity{
		id:        id,
		owner:     owner,
		photoPath: photoPath,
	}
}

// ID returns the stable catalog id.
func (e Entity) ID() int64 { return e.id }

// Owner returns the UUID keying this entity's embedding.
func (e Entity) Owner() uuid.UUID { return e.owner }

// PhotoPath returns the canonical photo path or URL.
func (e Entity) PhotoPath() string { return e.photoPath }
