package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleMechanic   Role = "MECHANIC"
	RoleDriver     Role = "DRIVER"
)

type Principal struct {
	UserID   uuid.UUID
	OrgID    uuid.UUID
	Name     string
	Role     Role
	DriverID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDispatcher() bool {
	return p.Role == RoleDispatcher
}

func (p Principal) IsMechanic() bool {
	return p.Role == RoleMechanic
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}
