package service

import (
	"context"
	"fmt"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

// Marketplace is the engine's entrypoint for the surrounding application
// layer. It wires the listing and purchase flows across the catalog, the
// ledger and the rewards engine.
type Marketplace struct {
	catalog *Catalog
	ledger  *Ledger
	users   *Users
	rewards *Rewards
}

// NewMarketplace builds the full engine on top of one repository.
func NewMarketplace(ctx context.Context, repo store.Repository) (*Marketplace, error) {
	catalog, err := NewCatalog(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	ledger, err := NewLedger(ctx, repo, catalog)
	if err != nil {
		return nil, fmt.Errorf("building ledger: %w", err)
	}
	users, err := NewUsers(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("building users: %w", err)
	}

	return &Marketplace{
		catalog: catalog,
		ledger:  ledger,
		users:   users,
		rewards: NewRewards(users),
	}, nil
}

func (m *Marketplace) Catalog() *Catalog { return m.catalog }
func (m *Marketplace) Ledger() *Ledger   { return m.ledger }
func (m *Marketplace) Users() *Users     { return m.users }
func (m *Marketplace) Rewards() *Rewards { return m.rewards }

// RegisterUser creates an account and seeds it with the welcome bonus.
func (m *Marketplace) RegisterUser(ctx context.Context, name, email string) (models.UserAccount, error) {
	acc, err := m.users.Create(ctx, name, email)
	if err != nil {
		return models.UserAccount{}, err
	}
	return m.rewards.ApplyWelcomeBonus(ctx, acc.ID)
}

// ListItem runs the listing flow: estimate impact, insert into the catalog,
// credit the seller. The first-listing check is a catalog query taken
// before the insert, so the new listing itself does not count.
func (m *Marketplace) ListItem(ctx context.Context, draft models.ProductDraft) (models.Product, models.UserAccount, error) {
	seller, err := m.users.Get(draft.SellerID)
	if err != nil {
		return models.Product{}, models.UserAccount{}, err
	}
	if draft.SellerName == "" {
		draft.SellerName = seller.Name
	}

	firstListing := len(m.catalog.ListBySeller(draft.SellerID)) == 0

	impact := EstimateImpact(draft.Category, draft.Condition)
	product, err := m.catalog.Insert(ctx, draft, impact)
	if err != nil {
		return models.Product{}, models.UserAccount{}, err
	}

	account, err := m.rewards.ApplyListingReward(ctx, draft.SellerID, firstListing)
	if err != nil {
		return models.Product{}, models.UserAccount{}, err
	}
	return product, account, nil
}

// Purchase runs the purchase protocol and credits the buyer. The buyer is
// validated up front so a failure leaves no partial state behind.
func (m *Marketplace) Purchase(ctx context.Context, productID, buyerID string) (models.Transaction, models.UserAccount, error) {
	if _, err := m.users.Get(buyerID); err != nil {
		return models.Transaction{}, models.UserAccount{}, err
	}

	tx, err := m.ledger.BuyProduct(ctx, productID, buyerID)
	if err != nil {
		return models.Transaction{}, models.UserAccount{}, err
	}

	account, err := m.rewards.ApplyPurchaseReward(ctx, buyerID, tx.EcoImpact)
	if err != nil {
		return models.Transaction{}, models.UserAccount{}, err
	}
	return tx, account, nil
}

// Leaderboard ranks every known account.
func (m *Marketplace) Leaderboard() []models.RankedUser {
	return RankUsers(m.users.Snapshot())
}
