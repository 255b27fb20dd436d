package repository

import "github.com/evetrack/corphangar/internal/domain/entity"

// ContainerLogRepository puerto para el log de acceso a contenedores.
type ContainerLogRepository interface {
	// CreateIfAbsent inserta la entrada si su clave natural no existe; devuelve true si insertó.
	CreateIfAbsent(log *entity.ContainerLog) (bool, error)
	ListByCorporation(corporationID int64, limit int) ([]*entity.ContainerLog, error)
}
