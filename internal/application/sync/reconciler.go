package sync

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
)

// ResolvedAsset un asset del fetch con su metadata ya resuelta: ubicación
// top-level, división (nil si el flag no mapea), nombre de tipo y precio unitario.
type ResolvedAsset struct {
	ItemID          int64
	TypeID          int64
	TypeName        string
	Quantity        int64
	LocationID      int64
	DivisionID      *int64
	UnitPrice       decimal.Decimal
	IsSingleton     bool
	IsBlueprintCopy bool
}

// ChangeSet resultado del clasificador de diffs para un ciclo: los upserts de
// items (marcados activos), los item_ids que transicionan a inactivo, las
// transacciones a persistir y los agregados para el snapshot.
type ChangeSet struct {
	Upserts      []*entity.HangarItem
	RemovedIDs   []int64
	Transactions []*entity.HangarTransaction
	ActiveCount  int
	TotalValue   decimal.Decimal
}

// BuildChangeSet compara el fetch resuelto contra el conjunto activo previo y
// clasifica cada item (máquina de estados del ciclo):
//
//	ABSENT → ACTIVE            emite ADD
//	ACTIVE → ACTIVE (qty ≠)    emite CHANGE
//	ACTIVE → ACTIVE (qty =)    sin registro
//	ACTIVE → INACTIVE          emite exactamente un REMOVE
//
// Un item ya inactivo que sigue ausente es invisible aquí (previous contiene
// solo activos), así que nunca genera un segundo REMOVE: re-ejecutar contra
// una lista sin cambios produce cero transacciones.
//
// Un item_id duplicado dentro del mismo fetch rompe el invariante de una fila
// por item y devuelve domain.ErrConsistencyViolation.
//
// Función pura: no hace I/O; el caller aplica el ChangeSet dentro de una
// única transacción junto con el snapshot.
func BuildChangeSet(corporationID int64, previous []*entity.HangarItem, assets []ResolvedAsset, now time.Time) (*ChangeSet, error) {
	prevActive := make(map[int64]*entity.HangarItem, len(previous))
	for _, item := range previous {
		prevActive[item.ItemID] = item
	}

	cs := &ChangeSet{TotalValue: decimal.Zero}
	seen := make(map[int64]struct{}, len(assets))

	for _, a := range assets {
		if _, dup := seen[a.ItemID]; dup {
			return nil, fmt.Errorf("item_id %d repetido en el fetch: %w", a.ItemID, domain.ErrConsistencyViolation)
		}
		seen[a.ItemID] = struct{}{}

		value := a.UnitPrice.Mul(decimal.NewFromInt(a.Quantity))
		cs.TotalValue = cs.TotalValue.Add(value)

		if prev, ok := prevActive[a.ItemID]; ok {
			if prev.Quantity != a.Quantity {
				cs.Transactions = append(cs.Transactions, &entity.HangarTransaction{
					CorporationID:   corporationID,
					TransactionType: entity.TransactionCHANGE,
					TypeID:          a.TypeID,
					TypeName:        a.TypeName,
					OldQuantity:     prev.Quantity,
					NewQuantity:     a.Quantity,
					QuantityChange:  a.Quantity - prev.Quantity,
					LocationID:      a.LocationID,
					DivisionID:      a.DivisionID,
					EstimatedValue:  value,
					DetectedAt:      now,
				})
			}
		} else {
			cs.Transactions = append(cs.Transactions, &entity.HangarTransaction{
				CorporationID:   corporationID,
				TransactionType: entity.TransactionADD,
				TypeID:          a.TypeID,
				TypeName:        a.TypeName,
				OldQuantity:     0,
				NewQuantity:     a.Quantity,
				QuantityChange:  a.Quantity,
				LocationID:      a.LocationID,
				DivisionID:      a.DivisionID,
				EstimatedValue:  value,
				DetectedAt:      now,
			})
		}

		cs.Upserts = append(cs.Upserts, &entity.HangarItem{
			CorporationID:   corporationID,
			ItemID:          a.ItemID,
			TypeID:          a.TypeID,
			TypeName:        a.TypeName,
			LocationID:      a.LocationID,
			DivisionID:      a.DivisionID,
			Quantity:        a.Quantity,
			EstimatedValue:  value,
			IsSingleton:     a.IsSingleton,
			IsBlueprintCopy: a.IsBlueprintCopy,
			IsActive:        true,
			LastSeen:        now,
		})
	}

	// Activos previos no visitados: transición a inactivo con un único REMOVE
	// que lleva su último estado conocido.
	for _, prev := range previous {
		if _, ok := seen[prev.ItemID]; ok {
			continue
		}
		cs.RemovedIDs = append(cs.RemovedIDs, prev.ItemID)
		cs.Transactions = append(cs.Transactions, &entity.HangarTransaction{
			CorporationID:   corporationID,
			TransactionType: entity.TransactionREMOVE,
			TypeID:          prev.TypeID,
			TypeName:        prev.TypeName,
			OldQuantity:     prev.Quantity,
			NewQuantity:     0,
			QuantityChange:  -prev.Quantity,
			LocationID:      prev.LocationID,
			DivisionID:      prev.DivisionID,
			EstimatedValue:  prev.EstimatedValue,
			DetectedAt:      now,
		})
	}

	cs.ActiveCount = len(cs.Upserts)
	return cs, nil
}
