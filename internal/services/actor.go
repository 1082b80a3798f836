package services

import "github.com/hanapp-ph/hanapp-backend/internal/models"

// Actor is the authenticated caller
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsClient() bool   { return a.Role == models.RoleClient }
func (a Actor) IsProvider() bool { return a.Role == models.RoleProvider }
