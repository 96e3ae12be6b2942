// Package repository holds the SQL for every table.
//
// Repositories return raw driver errors (wrapped with context) and
// sqlerr.NotFound for missing rows; services translate them.
package repository

import (
	"github.com/deppfellow/vistual/internal/server"
)

type Repositories struct {
	User    *UserRepository
	Garment *GarmentRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User:    NewUserRepository(s),
		Garment: NewGarmentRepository(s),
	}
}
