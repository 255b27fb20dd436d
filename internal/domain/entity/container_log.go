package entity

import "time"

// ContainerLog entrada del log de acceso a contenedores, ingerida best-effort
// como fuente complementaria de auditoría. La clave natural
// (corporación, character, contenedor, acción, type, cantidad, logged_at)
// deduplica entre ciclos.
type ContainerLog struct {
	ID                int64
	CorporationID     int64
	CharacterID       int64
	CharacterName     string
	ContainerID       int64
	ContainerTypeID   *int64
	ContainerTypeName string
	Action            string
	TypeID            *int64
	TypeName          string
	Quantity          *int64
	LocationID        *int64
	LocationFlag      string
	LoggedAt          time.Time
}
