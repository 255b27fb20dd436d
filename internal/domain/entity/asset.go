package entity

import (
	"strconv"
	"strings"
)

// AssetRecord un asset crudo tal como lo devuelve la fuente de inventario.
type AssetRecord struct {
	ItemID          int64
	TypeID          int64
	Quantity        int64
	LocationID      int64 // contenedor padre o estación/estructura
	LocationFlag    string
	IsSingleton     bool
	IsBlueprintCopy bool
}

// Clases de location_flag que nos interesan.
type FlagKind int

const (
	FlagOther FlagKind = iota
	FlagHangar
	FlagOffice
)

// LocationFlag variante cerrada del string location_flag, decodificada una sola vez por asset.
// Solo los slots de hangar corporativo (CorpSAG1..CorpSAG7) entran al ciclo de reconciliación.
type LocationFlag struct {
	Kind     FlagKind
	Division int // 1..7 cuando Kind == FlagHangar
}

const corpHangarPrefix = "CorpSAG"

// ParseLocationFlag decodifica el location_flag de la fuente.
// Flags no reconocidos (cargo de naves, hangares personales, etc.) quedan como FlagOther.
func ParseLocationFlag(flag string) LocationFlag {
	if strings.HasPrefix(flag, corpHangarPrefix) {
		n, err := strconv.Atoi(flag[len(corpHangarPrefix):])
		if err != nil || n < 1 || n > 7 {
			return LocationFlag{Kind: FlagOther}
		}
		return LocationFlag{Kind: FlagHangar, Division: n}
	}
	if flag == "OfficeFolder" {
		return LocationFlag{Kind: FlagOffice}
	}
	return LocationFlag{Kind: FlagOther}
}
