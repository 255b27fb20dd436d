package entity

import "time"

// Tipos de ubicación resuelta.
const (
	LocationTypeStation   = "station"
	LocationTypeStructure = "structure"
	LocationTypeUnknown   = "unknown"
)

// StructureIDFloor: los IDs de estructuras de jugador empiezan en 10^12;
// por debajo son estaciones NPC.
const StructureIDFloor int64 = 1_000_000_000_000

// Location estación o estructura top-level donde se almacenan los assets.
// Se crea de forma perezosa al primer encuentro y se cachea indefinidamente;
// la jerarquía sistema/región es opcional (puede quedar parcial).
type Location struct {
	LocationID      int64
	LocationName    string
	LocationType    string // station, structure, unknown
	SolarSystemID   *int64
	SolarSystemName string
	RegionID        *int64
	RegionName      string
	UpdatedAt       time.Time
}
