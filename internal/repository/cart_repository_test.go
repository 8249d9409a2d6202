package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"github.com/nikolayk812/orders-demo/internal/port"
	"github.com/nikolayk812/orders-demo/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type cartRepositorySuite struct {
	suite.Suite

	repo      port.CartRepository
	pool      *pgxpool.Pool
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	container, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)
	suite.container = container

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewCart(suite.pool)
	suite.Require().NoError(err)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *cartRepositorySuite) TestPutCart() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		cart      domain.Cart
		wantError string
	}{
		{
			name: "put cart with items: ok",
			cart: randomCart(domain.CartStateOpen, randomCartItem(), randomCartItem()),
		},
		{
			name: "put empty cart: ok",
			cart: randomCart(domain.CartStateOpen),
		},
		{
			name: "put cart with zero price and description: ok",
			cart: randomCart(domain.CartStatePaid, domain.CartItem{
				ItemID:      gofakeit.UUID(),
				Name:        gofakeit.ProductName(),
				Description: ptr(gofakeit.ProductName()),
				Price:       decimal.Zero,
				Quantity:    0,
			}),
		},
		{
			name:      "put cart with empty id: error",
			cart:      domain.Cart{OwnerID: gofakeit.UUID()},
			wantError: "cartID is empty",
		},
		{
			name:      "put cart with empty owner ID: error",
			cart:      domain.Cart{ID: gofakeit.UUID()},
			wantError: "ownerID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.PutCart(ctx, tt.cart)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			cart, err := suite.repo.GetCart(ctx, tt.cart.ID)
			require.NoError(t, err)

			assertCart(t, tt.cart, cart)
		})
	}
}

func (suite *cartRepositorySuite) TestGetCart() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	_, err := suite.repo.GetCart(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.repo.GetCart(ctx, "")
	require.EqualError(t, err, "cartID is empty")

	_, err = suite.pool.Exec(ctx,
		"INSERT INTO carts (cart_id, owner_id, state) VALUES ('10', 'id5', 'OPEN')")
	require.NoError(t, err)

	cart, err := suite.repo.GetCart(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, domain.CartState("OPEN"), cart.State)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func (suite *cartRepositorySuite) TestGetCartMalformedRow() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		items     string
		wantField string
	}{
		{
			name:      "item without price",
			items:     `[{"item_id": "a", "name": "tv", "quantity": 1}]`,
			wantField: "items[0].price",
		},
		{
			name:      "second item without item_id",
			items:     `[{"item_id": "a", "name": "tv", "price": "1", "quantity": 1}, {"name": "tv", "price": "1", "quantity": 1}]`,
			wantField: "items[1].item_id",
		},
		{
			name:      "item with textual quantity",
			items:     `[{"item_id": "a", "name": "tv", "price": "1", "quantity": "many"}]`,
			wantField: "items[0].quantity",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()
			cartID := gofakeit.UUID()

			_, err := suite.pool.Exec(ctx,
				"INSERT INTO carts (cart_id, owner_id, state, items) VALUES ($1, $2, 'open', $3::jsonb)",
				cartID, gofakeit.UUID(), tt.items)
			require.NoError(t, err)

			_, err = suite.repo.GetCart(ctx, cartID)
			require.Error(t, err)

			var decodeErr *domain.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.wantField, decodeErr.Field)
			assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
		})
	}
}

func (suite *cartRepositorySuite) TestDeleteCart() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart(domain.CartStateOpen, randomCartItem())
	require.NoError(t, suite.repo.PutCart(ctx, cart))

	deleted, err := suite.repo.DeleteCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = suite.repo.GetCart(ctx, cart.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err = suite.repo.DeleteCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = suite.repo.DeleteCart(ctx, "")
	require.EqualError(t, err, "cartID is empty")
}

func (suite *cartRepositorySuite) TestUpdateState() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		setup     *domain.Cart
		expected  domain.CartState
		wantError error
	}{
		{
			name:     "open to paid: ok",
			setup:    ptr(randomCart(domain.CartStateOpen, randomCartItem())),
			expected: domain.CartStateOpen,
		},
		{
			name:      "already paid: state mismatch",
			setup:     ptr(randomCart(domain.CartStatePaid)),
			expected:  domain.CartStateOpen,
			wantError: domain.ErrStateMismatch,
		},
		{
			name:      "missing cart: not found",
			expected:  domain.CartStateOpen,
			wantError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cartID := gofakeit.UUID()
			if tt.setup != nil {
				cartID = tt.setup.ID
				require.NoError(t, suite.repo.PutCart(ctx, *tt.setup))
			}

			cart, err := suite.repo.UpdateState(ctx, cartID, tt.expected, domain.CartStatePaid)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)

				if tt.setup != nil {
					unchanged, err := suite.repo.GetCart(ctx, cartID)
					require.NoError(t, err)
					assertCart(t, *tt.setup, unchanged)
				}
				return
			}
			require.NoError(t, err)

			want := *tt.setup
			want.State = domain.CartStatePaid
			assertCart(t, want, cart)

			stored, err := suite.repo.GetCart(ctx, cartID)
			require.NoError(t, err)
			assertCart(t, want, stored)
		})
	}
}

func (suite *cartRepositorySuite) TestReplaceItems() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart(domain.CartStateOpen, randomCartItem())
	require.NoError(t, suite.repo.PutCart(ctx, cart))

	newItems := []domain.CartItem{randomCartItem(), randomCartItem()}

	updated, err := suite.repo.ReplaceItems(ctx, cart.ID, newItems)
	require.NoError(t, err)

	want := cart
	want.Items = newItems
	assertCart(t, want, updated)

	_, err = suite.repo.ReplaceItems(ctx, gofakeit.UUID(), newItems)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *cartRepositorySuite) TestReplaceItemsPaidCart() {
	defer suite.deleteAll()

	for _, state := range []domain.CartState{domain.CartStatePaid, "PAID", "Paid"} {
		suite.Run(state.String(), func() {
			t := suite.T()
			ctx := t.Context()

			cart := randomCart(state, randomCartItem())
			require.NoError(t, suite.repo.PutCart(ctx, cart))

			_, err := suite.repo.ReplaceItems(ctx, cart.ID, []domain.CartItem{randomCartItem()})
			require.ErrorIs(t, err, domain.ErrStateMismatch)

			stored, err := suite.repo.GetCart(ctx, cart.ID)
			require.NoError(t, err)
			assertCart(t, cart, stored)
		})
	}
}

func (suite *cartRepositorySuite) TestStoredStateLetterCase() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	rows := []struct {
		cartID  string
		ownerID string
		state   string
	}{
		{cartID: "c1", ownerID: "OwnerID100", state: "OPEN"},
		{cartID: "c2", ownerID: "id5", state: "PAID"},
		{cartID: "c3", ownerID: "id5", state: "SHIPPED"},
		{cartID: "c4", ownerID: "id6", state: "paid"},
	}
	for _, row := range rows {
		_, err := suite.pool.Exec(ctx,
			"INSERT INTO carts (cart_id, owner_id, state, items) VALUES ($1, $2, $3, '[]'::jsonb)",
			row.cartID, row.ownerID, row.state)
		require.NoError(t, err)
	}

	cart, err := suite.repo.GetCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CartState("OPEN"), cart.State)

	paid, err := suite.repo.UpdateState(ctx, "c1", cart.State, cart.State.Paid())
	require.NoError(t, err)
	assert.Equal(t, domain.CartState("PAID"), paid.State)

	_, err = suite.repo.UpdateState(ctx, "c1", domain.CartStateOpen, domain.CartStatePaid)
	require.ErrorIs(t, err, domain.ErrStateMismatch)

	carts, err := suite.repo.QueryByState(ctx, domain.CartStatePaid)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c4"}, cartIDs(carts))

	state := domain.CartState("shipped")
	carts, err = suite.repo.QueryByOwner(ctx, "id5", &state)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, "c3", carts[0].ID)
	assert.Equal(t, domain.CartState("SHIPPED"), carts[0].State)
}

func (suite *cartRepositorySuite) TestQueryByOwner() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()

	open := randomCart(domain.CartStateOpen, randomCartItem())
	open.OwnerID = ownerID
	paid := randomCart(domain.CartStatePaid, randomCartItem())
	paid.OwnerID = ownerID
	other := randomCart(domain.CartStatePaid)

	for _, cart := range []domain.Cart{open, paid, other} {
		require.NoError(t, suite.repo.PutCart(ctx, cart))
	}

	carts, err := suite.repo.QueryByOwner(ctx, ownerID, nil)
	require.NoError(t, err)
	assertCartsByID(t, []domain.Cart{open, paid}, carts)

	state := domain.CartStatePaid
	carts, err = suite.repo.QueryByOwner(ctx, ownerID, &state)
	require.NoError(t, err)
	assertCartsByID(t, []domain.Cart{paid}, carts)

	carts, err = suite.repo.QueryByOwner(ctx, gofakeit.UUID(), nil)
	require.NoError(t, err)
	assert.Empty(t, carts)

	_, err = suite.repo.QueryByOwner(ctx, "", nil)
	require.EqualError(t, err, "ownerID is empty")
}

func (suite *cartRepositorySuite) TestQueryByState() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	paid1 := randomCart(domain.CartStatePaid, randomCartItem())
	paid2 := randomCart(domain.CartStatePaid, randomCartItem(), randomCartItem())
	open := randomCart(domain.CartStateOpen)

	for _, cart := range []domain.Cart{paid1, paid2, open} {
		require.NoError(t, suite.repo.PutCart(ctx, cart))
	}

	carts, err := suite.repo.QueryByState(ctx, domain.CartStatePaid)
	require.NoError(t, err)
	assertCartsByID(t, []domain.Cart{paid1, paid2}, carts)

	_, err = suite.repo.QueryByState(ctx, "")
	require.EqualError(t, err, "state is empty")
}

func (suite *cartRepositorySuite) TestWithTxRollback() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txRepo := repository.NewCartWithTx(tx)

	cart := randomCart(domain.CartStateOpen)
	require.NoError(t, txRepo.PutCart(ctx, cart))

	paid, err := txRepo.UpdateState(ctx, cart.ID, domain.CartStateOpen, domain.CartStatePaid)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatePaid, paid.State)

	require.NoError(t, tx.Rollback(ctx))

	_, err = suite.repo.GetCart(ctx, cart.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *cartRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE carts")
	suite.NoError(err)
}

func randomCart(state domain.CartState, items ...domain.CartItem) domain.Cart {
	if items == nil {
		items = []domain.CartItem{}
	}

	return domain.Cart{
		ID:      gofakeit.UUID(),
		OwnerID: gofakeit.UUID(),
		Items:   items,
		State:   state,
	}
}

func randomCartItem() domain.CartItem {
	return domain.CartItem{
		ItemID:   gofakeit.UUID(),
		Name:     gofakeit.ProductName(),
		Price:    decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Quantity: int64(gofakeit.IntRange(1, 10)),
	}
}

func cartIDs(carts []domain.Cart) []string {
	ids := make([]string, 0, len(carts))
	for _, cart := range carts {
		ids = append(ids, cart.ID)
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}

func assertCartsByID(t *testing.T, expected, actual []domain.Cart) {
	t.Helper()

	require.Len(t, actual, len(expected))

	byID := make(map[string]domain.Cart, len(actual))
	for _, cart := range actual {
		byID[cart.ID] = cart
	}

	for _, want := range expected {
		got, ok := byID[want.ID]
		require.True(t, ok, "cart[%s] is missing", want.ID)
		assertCart(t, want, got)
	}
}
