package store

import "github.com/MKhiriev/go-trace-keeper/internal/logger"

// Repositories groups the repositories built on one connection.
type Repositories struct {
	UserRepository UserRepository
}

// NewRepositories builds every repository on db.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository: NewUserRepository(db, log),
	}
}
