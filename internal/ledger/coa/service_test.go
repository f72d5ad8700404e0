package coa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

type fakeAccountRepo struct {
	accounts map[int64]*Account
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*Account), nextID: 1}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account Account) (Account, error) {
	account.ID = r.nextID
	r.nextID++
	account.IsActive = true
	stored := account
	r.accounts[account.ID] = &stored
	return account, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, orgID, id int64) (Account, error) {
	account, ok := r.accounts[id]
	if !ok || account.OrgID != orgID {
		return Account{}, shared.ErrNotFound
	}
	return *account, nil
}

func (r *fakeAccountRepo) List(ctx context.Context, orgID int64) ([]Account, error) {
	var out []Account
	for _, account := range r.accounts {
		if account.OrgID == orgID && account.IsActive {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListByType(ctx context.Context, orgID int64, t AccountType) ([]Account, error) {
	var out []Account
	for _, account := range r.accounts {
		if account.OrgID == orgID && account.IsActive && account.Type == t {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) Deactivate(ctx context.Context, orgID, id, actorID int64) error {
	account, ok := r.accounts[id]
	if !ok || account.OrgID != orgID {
		return shared.ErrNotFound
	}
	account.IsActive = false
	return nil
}

func TestNormalSides(t *testing.T) {
	assert.Equal(t, SideDebit, AccountTypeAsset.NormalSide())
	assert.Equal(t, SideDebit, AccountTypeExpense.NormalSide())
	assert.Equal(t, SideCredit, AccountTypeLiability.NormalSide())
	assert.Equal(t, SideCredit, AccountTypeEquity.NormalSide())
	assert.Equal(t, SideCredit, AccountTypeRevenue.NormalSide())
}

func TestCreateDefaultsSubTypeAndActivity(t *testing.T) {
	svc := NewService(newFakeAccountRepo(), nil)

	account, err := svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "1000", Name: "Cash", Type: AccountTypeAsset, IsCash: true, ActorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, SubTypeCurrentAsset, account.SubType)
	assert.Equal(t, ActivityOperating, account.Activity)

	fixed, err := svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "1500", Name: "Equipment", Type: AccountTypeAsset, SubType: SubTypeFixedAsset, ActorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, ActivityInvesting, fixed.Activity)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newFakeAccountRepo(), nil)
	_, err := svc.Create(context.Background(), CreateInput{OrgID: 1, Code: "9", Name: "x", Type: "SUSPENSE"})
	require.Error(t, err)
}

func TestCreateRequiresMatchingParentType(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewService(repo, nil)

	parent, err := svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "1000", Name: "Current Assets", Type: AccountTypeAsset, ActorID: 7,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "4100", Name: "Sales", Type: AccountTypeRevenue, ParentID: &parent.ID, ActorID: 7,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must match")

	child, err := svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "1010", Name: "Petty Cash", Type: AccountTypeAsset, ParentID: &parent.ID, ActorID: 7,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
}

func TestDeactivateIsSoftDelete(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewService(repo, nil)

	account, err := svc.Create(context.Background(), CreateInput{
		OrgID: 1, Code: "1000", Name: "Cash", Type: AccountTypeAsset, ActorID: 7,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), 1, account.ID, 7))
	assert.False(t, repo.accounts[account.ID].IsActive)
	assert.Contains(t, repo.accounts, account.ID, "record stays for historical reports")
}

func TestBuildHierarchyGroupsChildrenAndSurfacesOrphans(t *testing.T) {
	parentID := int64(1)
	missingID := int64(99)
	accounts := []Account{
		{ID: 1, Code: "1000", Name: "Assets", Type: AccountTypeAsset},
		{ID: 2, Code: "1010", Name: "Cash", Type: AccountTypeAsset, ParentID: &parentID},
		{ID: 3, Code: "1020", Name: "Bank", Type: AccountTypeAsset, ParentID: &parentID},
		{ID: 4, Code: "4000", Name: "Sales", Type: AccountTypeRevenue},
		{ID: 5, Code: "5000", Name: "Orphan", Type: AccountTypeExpense, ParentID: &missingID},
	}

	nodes := BuildHierarchy(accounts)
	require.Len(t, nodes, 3)
	assert.Equal(t, "1000", nodes[0].Account.Code)
	require.Len(t, nodes[0].Children, 2)
	assert.Equal(t, "1010", nodes[0].Children[0].Account.Code)
	assert.Equal(t, "1020", nodes[0].Children[1].Account.Code)
	assert.Equal(t, "4000", nodes[1].Account.Code)
	assert.Equal(t, "5000", nodes[2].Account.Code, "child of a missing parent becomes a root")
}
