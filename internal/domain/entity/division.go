package entity

// HangarDivision subdivisión nombrada del hangar de una corporación (1..7).
// Clave única: (corporación, división). Solo se upserta, nunca se borra en medio de un ciclo.
type HangarDivision struct {
	ID            int64
	CorporationID int64
	DivisionID    int
	DivisionName  string
}
