package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evetrack/corphangar/internal/domain/entity"
)

// syncContainerLogs ingiere el log de acceso a contenedores como fuente
// complementaria de auditoría. Best-effort: requiere un scope adicional en la
// credencial y cualquier fallo solo se loguea. La clave natural del
// repositorio deduplica entre ciclos.
func (uc *UseCase) syncContainerLogs(ctx context.Context, corporationID int64, token string, log *zerolog.Logger) {
	entries, err := uc.source.FetchContainerLogs(ctx, corporationID, token)
	if err != nil {
		log.Warn().Err(err).Msg("logs de contenedores no disponibles")
		return
	}
	if len(entries) == 0 {
		return
	}

	// Nombres de tipo para contenedores e items, resueltos una sola vez.
	typeNames := make(map[int64]string)
	resolveType := func(typeID int64) string {
		if typeID == 0 {
			return ""
		}
		if name, ok := typeNames[typeID]; ok {
			return name
		}
		name, err := uc.source.FetchTypeName(ctx, typeID)
		if err != nil || name == "" {
			name = fmt.Sprintf("Unknown Type %d", typeID)
		}
		typeNames[typeID] = name
		return name
	}

	created := 0
	for _, e := range entries {
		if e.CharacterID == 0 {
			continue
		}
		logEntry := &entity.ContainerLog{
			CorporationID:     corporationID,
			CharacterID:       e.CharacterID,
			ContainerID:       e.ContainerID,
			ContainerTypeName: resolveType(e.ContainerTypeID),
			Action:            e.Action,
			TypeName:          resolveType(e.TypeID),
			Quantity:          e.Quantity,
			LocationFlag:      e.LocationFlag,
			LoggedAt:          e.LoggedAt,
		}
		if e.ContainerTypeID != 0 {
			id := e.ContainerTypeID
			logEntry.ContainerTypeID = &id
		}
		if e.TypeID != 0 {
			id := e.TypeID
			logEntry.TypeID = &id
		}
		if e.LocationID != 0 {
			id := e.LocationID
			logEntry.LocationID = &id
		}

		ok, err := uc.logRepo.CreateIfAbsent(logEntry)
		if err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar entrada de log de contenedor")
			continue
		}
		if ok {
			created++
		}
	}
	log.Info().Int("fetched", len(entries)).Int("created", created).Msg("logs de contenedores ingeridos")
}
