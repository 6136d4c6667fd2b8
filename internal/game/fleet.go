package game

import (
	"fmt"

	"seabattle/internal/model"
)

// Catalog is the fixed ship catalog, in placement order. Five kinds,
// 17 cells combined.
var Catalog = []model.ShipInfo{
	{ID: model.KindCarrier, Name: "Carrier", Length: 5},
	{ID: model.KindBattleship, Name: "Battleship", Length: 4},
	{ID: model.KindCruiser, Name: "Cruiser", Length: 3},
	{ID: model.KindSubmarine, Name: "Submarine", Length: 3},
	{ID: model.KindDestroyer, Name: "Destroyer", Length: 2},
}

// TotalFleetCells is the cell count of a complete fleet.
const TotalFleetCells = 17

// CatalogEntry returns the catalog entry for a kind.
func CatalogEntry(kind model.ShipKind) (model.ShipInfo, bool) {
	for _, info := range Catalog {
		if info.ID == kind {
			return info, true
		}
	}
	return model.ShipInfo{}, false
}

// FleetCells returns the union of all cells occupied by the fleet.
func FleetCells(fleet []model.ShipPlacement) map[string]struct{} {
	cells := make(map[string]struct{}, TotalFleetCells)
	for _, ship := range fleet {
		for _, c := range ship.Cells {
			cells[c] = struct{}{}
		}
	}
	return cells
}

// ValidatePlacements checks a possibly partial fleet: at most one placement
// per catalog kind, every placement the right length for its kind, and each
// one passing the placement rules against the ships before it.
func ValidatePlacements(fleet []model.ShipPlacement) error {
	seen := make(map[model.ShipKind]bool, len(Catalog))
	for i, ship := range fleet {
		info, ok := CatalogEntry(ship.Info.ID)
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("unknown ship kind %q", ship.Info.ID)}
		}
		if seen[ship.Info.ID] {
			return &ValidationError{Reason: fmt.Sprintf("duplicate ship kind %q", ship.Info.ID)}
		}
		seen[ship.Info.ID] = true
		if len(ship.Cells) != info.Length {
			return &ValidationError{Reason: fmt.Sprintf("%s must occupy %d cells, got %d", info.Name, info.Length, len(ship.Cells))}
		}
		if err := CanPlace(fleet[:i], ship.Cells); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFleet checks that a fleet is complete and legally laid out:
// exactly one placement per catalog kind.
func ValidateFleet(fleet []model.ShipPlacement) error {
	if err := ValidatePlacements(fleet); err != nil {
		return err
	}
	if len(fleet) != len(Catalog) {
		return &ValidationError{Reason: fmt.Sprintf("incomplete fleet: %d of %d ships placed", len(fleet), len(Catalog))}
	}
	return nil
}
