// Package company manages branches and numbering documents of a tenant.
package company

import (
	"context"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/shared"
)

// Service handles branch and document operations
type Service struct {
	executor apptenant.Executor
}

// NewService creates a new company Service
func NewService(executor apptenant.Executor) *Service {
	return &Service{executor: executor}
}

// ListBranches returns one page of branches
func (s *Service) ListBranches(ctx context.Context, nit string, filter shared.Filter) ([]company.Branch, int64, error) {
	var (
		items []company.Branch
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Branches().List(ctx, filter)
		return err
	})
	return items, total, err
}

// GetBranch returns one branch
func (s *Service) GetBranch(ctx context.Context, nit string, id int64) (*company.Branch, error) {
	var branch *company.Branch
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		branch, err = sess.Branches().FindByID(ctx, id)
		return err
	})
	return branch, err
}

// CreateBranch inserts a new branch
func (s *Service) CreateBranch(ctx context.Context, nit string, input BranchInput) (*company.Branch, error) {
	branch := &company.Branch{Active: true}
	applyBranch(branch, input)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Branches().Create(ctx, branch)
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

// UpdateBranch overwrites an existing branch
func (s *Service) UpdateBranch(ctx context.Context, nit string, id int64, input BranchInput) (*company.Branch, error) {
	var branch *company.Branch
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		if branch, err = sess.Branches().FindByID(ctx, id); err != nil {
			return err
		}
		applyBranch(branch, input)
		return sess.Branches().Update(ctx, branch)
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

// DeleteBranch removes a branch. Branches still referenced by documents or
// stock fail with a constraint violation.
func (s *Service) DeleteBranch(ctx context.Context, nit string, id int64) error {
	return s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Branches().Delete(ctx, id)
	})
}

// ListDocuments returns one page of numbering documents
func (s *Service) ListDocuments(ctx context.Context, nit string, filter shared.Filter) ([]company.Document, int64, error) {
	var (
		items []company.Document
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Documents().List(ctx, filter)
		return err
	})
	return items, total, err
}

// GetDocument returns one numbering document
func (s *Service) GetDocument(ctx context.Context, nit string, id int64) (*company.Document, error) {
	var doc *company.Document
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		doc, err = sess.Documents().FindByID(ctx, id)
		return err
	})
	return doc, err
}

// CreateDocument inserts a numbering document. The sequence starts at 1
// unless the input sets consecutivo_actual.
func (s *Service) CreateDocument(ctx context.Context, nit string, input DocumentInput) (*company.Document, error) {
	doc := &company.Document{CurrentNumber: 1, Active: true}
	applyDocument(doc, input)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		if doc.BranchID != nil {
			if _, err := sess.Branches().FindByID(ctx, *doc.BranchID); err != nil {
				return err
			}
		}
		return sess.Documents().Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument overwrites a numbering document. The row is locked like
// ReserveNumber locks it, so consecutivo_actual is written back from a
// current read unless the input sets it.
func (s *Service) UpdateDocument(ctx context.Context, nit string, id int64, input DocumentInput) (*company.Document, error) {
	var doc *company.Document
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			var err error
			if doc, err = tx.Documents().FindForUpdate(ctx, id); err != nil {
				return err
			}
			applyDocument(doc, input)
			return tx.Documents().Update(ctx, doc)
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a numbering document
func (s *Service) DeleteDocument(ctx context.Context, nit string, id int64) error {
	return s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Documents().Delete(ctx, id)
	})
}

func applyBranch(b *company.Branch, in BranchInput) {
	b.Name = in.Name
	b.Address = in.Address
	b.Phone = in.Phone
	b.City = in.City
	if in.Active != nil {
		b.Active = *in.Active
	}
}

func applyDocument(d *company.Document, in DocumentInput) {
	d.BranchID = in.BranchID
	d.Kind = in.Kind
	d.Name = in.Name
	d.Prefix = in.Prefix
	d.Resolution = in.Resolution
	if in.CurrentNumber != nil {
		d.CurrentNumber = *in.CurrentNumber
	}
	if in.Active != nil {
		d.Active = *in.Active
	}
}
