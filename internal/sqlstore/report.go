// This file writes the XLSX inventory report.
package sqlstore

import (
	"context"
	"fmt"

	excelize "github.com/xuri/excelize/v2"
)

// Report sheet names.
const (
	SheetBoxes          = "Boxes"
	SheetComponentTypes = "Component Types"
	SheetInventory      = "Inventory"
)

// WriteReport saves an Excel workbook with one sheet per table. The
// Inventory sheet resolves ids to box and component names.
func (b *Backend) WriteReport(ctx context.Context, path string) error {
	snap, err := b.readSnapshot(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBoxes); err != nil {
		return fmt.Errorf("naming boxes sheet: %w", err)
	}
	boxRows := make([][]any, 0, len(snap.boxes))
	boxNames := make(map[int64]string, len(snap.boxes))
	for _, r := range snap.boxes {
		boxRows = append(boxRows, []any{r.BoxID, r.Name, r.Description, r.CreatedAt})
		boxNames[r.BoxID] = r.Name
	}
	if err := writeSheet(f, SheetBoxes, []any{"ID", "Name", "Description", "Created"}, boxRows); err != nil {
		return err
	}

	ctRows := make([][]any, 0, len(snap.componentTypes))
	cts := make(map[int64]componentTypeJSON, len(snap.componentTypes))
	for _, r := range snap.componentTypes {
		ctRows = append(ctRows, []any{r.ComponentTypeID, r.Name, r.Category, r.MaxPerBox, r.Description})
		cts[r.ComponentTypeID] = r
	}
	if _, err := f.NewSheet(SheetComponentTypes); err != nil {
		return fmt.Errorf("creating component types sheet: %w", err)
	}
	if err := writeSheet(f, SheetComponentTypes,
		[]any{"ID", "Name", "Category", "Max Per Box", "Description"}, ctRows); err != nil {
		return err
	}

	invRows := make([][]any, 0, len(snap.entries))
	for _, r := range snap.entries {
		ct := cts[r.ComponentTypeID]
		invRows = append(invRows, []any{boxNames[r.BoxID], ct.Name, ct.Category, r.Quantity, ct.MaxPerBox, r.LastUpdated})
	}
	if _, err := f.NewSheet(SheetInventory); err != nil {
		return fmt.Errorf("creating inventory sheet: %w", err)
	}
	if err := writeSheet(f, SheetInventory,
		[]any{"Box", "Component", "Category", "Quantity", "Max Per Box", "Last Updated"}, invRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
