// Package memory implements the collaborator ports over in-process data.
package memory

import (
	"context"
	"strconv"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/infrastructure/snapshot"
)

// Source serves every read port from a snapshot. Missing entities fail the way the CRM would.
type Source struct {
	snap *snapshot.Snapshot
}

func NewSource(snap *snapshot.Snapshot) *Source {
	if snap == nil {
		snap = &snapshot.Snapshot{}
	}
	return &Source{snap: snap}
}

func (s *Source) FetchOrderLines(_ context.Context, orderID int64) ([]domain.LineItem, error) {
	lines := s.snap.Orders[orderID]
	if len(lines) == 0 {
		return nil, apperrors.NotFound("order products", strconv.FormatInt(orderID, 10))
	}
	out := make([]domain.LineItem, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *Source) FetchCatalogProperties(_ context.Context, productID domain.ProductID) (domain.Properties, error) {
	props, ok := s.snap.Catalog[productID]
	if !ok {
		return nil, apperrors.NotFound("product", strconv.FormatInt(int64(productID), 10))
	}
	return props, nil
}

func (s *Source) FetchCompany(_ context.Context, companyID int64) (domain.Company, error) {
	c, ok := s.snap.Companies[companyID]
	if !ok {
		return domain.Company{}, apperrors.NotFound("company", strconv.FormatInt(companyID, 10))
	}
	if c.ID == 0 {
		c.ID = companyID
	}
	return c, nil
}

// FetchProgramRecords fails for a program id the snapshot does not know, like an invalid remote id.
func (s *Source) FetchProgramRecords(_ context.Context, programID int64) ([]domain.ProgramRecord, error) {
	recs, ok := s.snap.Programs[programID]
	if !ok {
		return nil, apperrors.NotFound("program", strconv.FormatInt(programID, 10))
	}
	return recs, nil
}

func (s *Source) FetchReferenceListElement(_ context.Context, listID, elementID int64) (domain.Properties, bool, error) {
	list, ok := s.snap.ReferenceLists[listID]
	if !ok {
		return nil, false, apperrors.NotFound("reference list", strconv.FormatInt(listID, 10))
	}
	elem, ok := list[domain.GroupID(elementID)]
	return elem, ok, nil
}

func (s *Source) FetchProductRows(_ context.Context, recordID int64) ([]domain.ProductRow, error) {
	return s.snap.ProductRows[recordID], nil
}
