// Package partner manages terceros, the customers and suppliers of a tenant.
package partner

import (
	"context"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/partner"
	"github.com/erp/pymes/internal/domain/shared"
)

// Service handles tercero operations
type Service struct {
	executor apptenant.Executor
}

// NewService creates a new partner Service
func NewService(executor apptenant.Executor) *Service {
	return &Service{executor: executor}
}

// List returns one page of terceros. Filters accept tipo, activo and ciudad.
func (s *Service) List(ctx context.Context, nit string, filter shared.Filter) ([]partner.Partner, int64, error) {
	var (
		items []partner.Partner
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Partners().List(ctx, filter)
		return err
	})
	return items, total, err
}

// Get returns one tercero
func (s *Service) Get(ctx context.Context, nit string, id int64) (*partner.Partner, error) {
	var p *partner.Partner
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		p, err = sess.Partners().FindByID(ctx, id)
		return err
	})
	return p, err
}

// Create inserts a tercero
func (s *Service) Create(ctx context.Context, nit string, input PartnerInput) (*partner.Partner, error) {
	p := &partner.Partner{Active: true}
	apply(p, input)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Partners().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update overwrites a tercero
func (s *Service) Update(ctx context.Context, nit string, id int64, input PartnerInput) (*partner.Partner, error) {
	var p *partner.Partner
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		if p, err = sess.Partners().FindByID(ctx, id); err != nil {
			return err
		}
		apply(p, input)
		return sess.Partners().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a tercero. A tercero with invoices, purchases or receipts
// fails with a constraint violation.
func (s *Service) Delete(ctx context.Context, nit string, id int64) error {
	return s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Partners().Delete(ctx, id)
	})
}

func apply(p *partner.Partner, in PartnerInput) {
	p.DocumentType = in.DocumentType
	p.DocumentNumber = in.DocumentNumber
	p.Name = in.Name
	p.Kind = in.Kind
	p.Email = in.Email
	p.Phone = in.Phone
	p.Address = in.Address
	p.City = in.City
	if in.Active != nil {
		p.Active = *in.Active
	}
}
