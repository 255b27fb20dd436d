package inventory

import "github.com/evetrack/corphangar/internal/domain/entity"

// ResolveStationID sube por la cadena de contenedores padre hasta el ID de la
// estación/estructura real.
//
// Jerarquía de assets de la fuente:
//
//	Estación/Estructura
//	  └─ Oficina corporativa (OfficeFolder, location_id = estación)
//	       └─ Hangar (CorpSAG1-7, location_id = item de la oficina)
//	            └─ Contenedor / Item
//
// Mientras el ID actual sea a su vez un asset del fetch, se reemplaza por el
// location_id de su registro. El recorrido termina cuando el ID ya no es un
// asset (es una estación/estructura verdadera). Un set de visitados corta
// ciclos en datos malformados: ante revisita se devuelve el último ID bueno.
// Función pura, sin I/O.
func ResolveStationID(assetID int64, graph map[int64]*entity.AssetRecord) int64 {
	visited := make(map[int64]struct{})
	current := assetID

	for {
		rec, ok := graph[current]
		if !ok {
			return current
		}
		if _, seen := visited[current]; seen {
			// Ciclo en la cadena de padres; la jerarquía debería ser un DAG
			// de profundidad <= 3.
			return current
		}
		visited[current] = struct{}{}
		current = rec.LocationID
	}
}
