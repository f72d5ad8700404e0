package coa

import (
	"context"
	"fmt"
	"sort"
	"time"

	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

// AuditPort records registry events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service owns the chart of accounts registry.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput carries the administrator-supplied account attributes.
type CreateInput struct {
	OrgID    int64
	Code     string
	Name     string
	Type     AccountType
	SubType  SubType
	Activity CashActivity
	IsCash   bool
	ParentID *int64
	ActorID  int64
}

// Create registers a new account. Sub-type and activity default from the
// account type when omitted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if in.Code == "" || in.Name == "" {
		return Account{}, fmt.Errorf("ledger: account code and name required")
	}
	if !in.Type.Valid() {
		return Account{}, fmt.Errorf("ledger: unknown account type %q", in.Type)
	}
	if in.SubType == "" {
		in.SubType = DefaultSubType(in.Type)
	}
	if in.Activity == "" {
		in.Activity = DefaultActivity(in.SubType)
	}
	if in.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, in.OrgID, *in.ParentID)
		if err != nil {
			return Account{}, fmt.Errorf("ledger: parent account: %w", err)
		}
		if parent.Type != in.Type {
			return Account{}, fmt.Errorf("ledger: parent account %s has type %s, child must match", parent.Code, parent.Type)
		}
	}
	account, err := s.repo.Create(ctx, Account{
		OrgID:     in.OrgID,
		Code:      in.Code,
		Name:      in.Name,
		Type:      in.Type,
		SubType:   in.SubType,
		Activity:  in.Activity,
		IsCash:    in.IsCash,
		ParentID:  in.ParentID,
		CreatedBy: in.ActorID,
	})
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			ActorID:  in.ActorID,
			Action:   "account.create",
			Entity:   "account",
			EntityID: fmt.Sprintf("%d", account.ID),
			Meta:     map[string]any{"code": account.Code, "type": string(account.Type)},
			At:       s.now(),
		})
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (Account, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID int64) ([]Account, error) {
	return s.repo.List(ctx, orgID)
}

func (s *Service) ListByType(ctx context.Context, orgID int64, t AccountType) ([]Account, error) {
	return s.repo.ListByType(ctx, orgID, t)
}

// ListHierarchy groups accounts under their parents for subtotal rollups.
// Orphaned children (inactive parent) surface as roots.
func (s *Service) ListHierarchy(ctx context.Context, orgID int64) ([]Node, error) {
	accounts, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return BuildHierarchy(accounts), nil
}

// Deactivate soft-deletes an account. Records stay in place so historical
// reports keep resolving the reference.
func (s *Service) Deactivate(ctx context.Context, orgID, id, actorID int64) error {
	if err := s.repo.Deactivate(ctx, orgID, id, actorID); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			ActorID:  actorID,
			Action:   "account.deactivate",
			Entity:   "account",
			EntityID: fmt.Sprintf("%d", id),
			At:       s.now(),
		})
	}
	return nil
}

// BuildHierarchy arranges a flat account list into parent/child nodes.
func BuildHierarchy(accounts []Account) []Node {
	byParent := make(map[int64][]Account)
	ids := make(map[int64]bool, len(accounts))
	for _, a := range accounts {
		ids[a.ID] = true
	}
	var roots []Account
	for _, a := range accounts {
		if a.ParentID != nil && ids[*a.ParentID] {
			byParent[*a.ParentID] = append(byParent[*a.ParentID], a)
			continue
		}
		roots = append(roots, a)
	}
	var build func(parent Account) Node
	build = func(parent Account) Node {
		node := Node{Account: parent}
		children := byParent[parent.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })
		for _, child := range children {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Code < roots[j].Code })
	nodes := make([]Node, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, build(root))
	}
	return nodes
}
