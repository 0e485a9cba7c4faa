// Package dataset reads and writes the tabular interchange files of the
// assessment pipeline: one xlsx table per snapshot plus the merged export.
// Range and identity invariants are enforced here, at the ingestion boundary.
package dataset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/scoring"
)

var (
	// ErrDataLoad signals a missing or malformed input table. Fatal to the
	// run; retrying cannot change the outcome.
	ErrDataLoad = errors.New("data load failure")

	// ErrSchemaMismatch signals a table missing the join key or dimension
	// columns.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

const sheetName = "Sheet1"

// panelHeader returns the column names of a single-snapshot table.
func panelHeader() []string {
	cols := []string{"Company_ID", "Company_Name", "Sector", "Country"}
	for _, d := range scoring.Dimensions {
		cols = append(cols, "D_"+d)
	}
	return append(cols, "Overall_Maturity")
}

// LoadPanel reads one snapshot table. Dimension values must lie in [0, 100]
// and Company_ID must be unique; both are checked here so that downstream
// computation can assume valid panels.
func LoadPanel(path string, snapshot panel.Snapshot) (*panel.Panel, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataLoad, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrDataLoad, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDataLoad, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDataLoad, path)
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIdx[name] = i
	}
	for _, name := range panelHeader() {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %s", ErrSchemaMismatch, path, name)
		}
	}

	p := &panel.Panel{Snapshot: snapshot, Orgs: make([]panel.Organization, 0, len(rows)-1)}
	for r, row := range rows[1:] {
		cell := func(name string) string {
			i := colIdx[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		var dims scoring.DimensionSet
		for d, name := range scoring.Dimensions {
			v, err := strconv.ParseFloat(cell("D_"+name), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s row %d column D_%s: %v", ErrDataLoad, path, r+2, name, err)
			}
			dims[d] = v
		}
		overall, err := strconv.ParseFloat(cell("Overall_Maturity"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d column Overall_Maturity: %v", ErrDataLoad, path, r+2, err)
		}

		p.Orgs = append(p.Orgs, panel.Organization{
			CompanyID:       cell("Company_ID"),
			CompanyName:     cell("Company_Name"),
			Sector:          cell("Sector"),
			Country:         cell("Country"),
			Dimensions:      dims,
			OverallMaturity: overall,
		})
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WritePanel serializes one snapshot table.
func WritePanel(path string, p *panel.Panel) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", toRow(panelHeader())); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, org := range p.Orgs {
		row := []interface{}{org.CompanyID, org.CompanyName, org.Sector, org.Country}
		for _, v := range org.Dimensions {
			row = append(row, v)
		}
		row = append(row, org.OverallMaturity)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteMerged serializes the merged cohort with _Before/_After column
// suffixes and the derived Maturity_Growth column.
func WriteMerged(path string, merged []cohort.MergedEntity) error {
	header := []string{"Company_ID", "Company_Name", "Sector", "Country"}
	for _, d := range scoring.Dimensions {
		header = append(header, "D_"+d+"_Before")
	}
	header = append(header, "Overall_Maturity_Before")
	for _, d := range scoring.Dimensions {
		header = append(header, "D_"+d+"_After")
	}
	header = append(header, "Overall_Maturity_After", "Maturity_Growth")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", toRow(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range merged {
		row := []interface{}{e.CompanyID, e.CompanyName, e.Sector, e.Country}
		for _, v := range e.Before {
			row = append(row, v)
		}
		row = append(row, e.OverallBefore)
		for _, v := range e.After {
			row = append(row, v)
		}
		row = append(row, e.OverallAfter, e.MaturityGrowth)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func toRow(cols []string) *[]interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return &row
}
