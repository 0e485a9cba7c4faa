package panel

import (
	"errors"
	"fmt"

	"github.com/edihlab/maturity/internal/scoring"
)

// Snapshot labels one measurement state of the cohort.
type Snapshot string

const (
	SnapshotBefore Snapshot = "before"
	SnapshotAfter  Snapshot = "after"
)

// ErrDuplicateCompanyID signals a panel carrying the same Company_ID twice.
var ErrDuplicateCompanyID = errors.New("duplicate company id in panel")

// Organization is one company's record for a single snapshot.
type Organization struct {
	CompanyID       string               `json:"company_id"`
	CompanyName     string               `json:"company_name"`
	Sector          string               `json:"sector"`
	Country         string               `json:"country"`
	Dimensions      scoring.DimensionSet `json:"dimensions"`
	OverallMaturity float64              `json:"overall_maturity"`
}

// Panel is the full cohort for one snapshot. Panels are built once per data
// load and treated as immutable afterwards.
type Panel struct {
	Snapshot Snapshot       `json:"snapshot"`
	Orgs     []Organization `json:"organizations"`
}

// Validate enforces the ingestion-time invariants: Company_ID uniqueness and
// dimension values within [0, 100].
func (p *Panel) Validate() error {
	seen := make(map[string]bool, len(p.Orgs))
	for _, org := range p.Orgs {
		if seen[org.CompanyID] {
			return fmt.Errorf("%w: %s", ErrDuplicateCompanyID, org.CompanyID)
		}
		seen[org.CompanyID] = true
		if err := org.Dimensions.Validate(); err != nil {
			return fmt.Errorf("company %s: %w", org.CompanyID, err)
		}
	}
	return nil
}

// ByCompanyID returns an index from Company_ID to the organization's position
// in the panel.
func (p *Panel) ByCompanyID() map[string]int {
	idx := make(map[string]int, len(p.Orgs))
	for i, org := range p.Orgs {
		idx[org.CompanyID] = i
	}
	return idx
}
