package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo keeps books and placed orders in memory, enforcing the same
// stock rules as the SQL implementation.
type stubBook struct {
	title     string
	price     string
	stock     int
	threshold int
}

type stubRepo struct {
	books      map[string]*stubBook
	lastOrder  *Order
	lastItems  []Item
	nextID     int64
	placeCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{books: map[string]*stubBook{}, nextID: 1}
}

func (s *stubRepo) Place(ctx context.Context, req PlaceRequest) (*Order, []Item, error) {
	s.placeCalls++
	total := decimal.Zero
	var items []Item
	for _, it := range req.Items {
		b, ok := s.books[it.ISBN]
		if !ok {
			return nil, nil, &BookNotFoundError{ISBN: it.ISBN}
		}
		if b.stock < it.Quantity {
			return nil, nil, &InsufficientStockError{ISBN: it.ISBN, Available: b.stock, Requested: it.Quantity}
		}
		price := decimal.RequireFromString(b.price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, Item{
			OrderID:         s.nextID,
			BookISBN:        it.ISBN,
			Title:           b.title,
			Quantity:        it.Quantity,
			PriceAtPurchase: price.StringFixed(2),
		})
	}
	// All checks passed; now mutate.
	for _, it := range req.Items {
		s.books[it.ISBN].stock -= it.Quantity
	}
	o := &Order{
		ID:          s.nextID,
		UserID:      req.UserID,
		OrderDate:   time.Now(),
		TotalAmount: total.StringFixed(2),
		CardNumber:  req.Card.MaskedNumber,
		CardExpiry:  req.Card.NormalizedExpiry,
	}
	s.nextID++
	s.lastOrder = o
	s.lastItems = items
	return o, items, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	if s.lastOrder != nil && s.lastOrder.UserID == userID {
		return []Order{*s.lastOrder}, nil
	}
	return []Order{}, nil
}

func (s *stubRepo) GetByID(ctx context.Context, orderID, userID int64) (*Order, []Item, error) {
	if s.lastOrder == nil || s.lastOrder.ID != orderID || s.lastOrder.UserID != userID {
		return nil, nil, ErrNotFound
	}
	return s.lastOrder, s.lastItems, nil
}

func (s *stubRepo) ListAll(ctx context.Context, limit, offset int) ([]OrderWithUser, int, error) {
	if s.lastOrder == nil {
		return nil, 0, nil
	}
	return []OrderWithUser{{Order: *s.lastOrder}}, 1, nil
}

type stubSink struct{ published [][]byte }

func (s *stubSink) Publish(key, value []byte) { s.published = append(s.published, value) }

type stubReco struct{ invalidated []int64 }

func (s *stubReco) InvalidateRecommendations(ctx context.Context, userID int64) {
	s.invalidated = append(s.invalidated, userID)
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func validRequest(items ...ItemRequest) PlaceOrderRequest {
	return PlaceOrderRequest{
		Items:            items,
		CreditCardNumber: "4242424242424242",
		CreditCardExpiry: "03/26",
	}
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	repo := newStubRepo()
	repo.books["9780143127741"] = &stubBook{title: "Sapiens", price: "15.00", stock: 5, threshold: 2}
	sink := &stubSink{}
	reco := &stubReco{}
	svc := NewService(repo, sink, reco).WithClock(fixedNow)

	o, items, err := svc.PlaceOrder(context.Background(), 7, validRequest(ItemRequest{ISBN: "9780143127741", Quantity: 5}))
	require.NoError(t, err)

	assert.Equal(t, "75.00", o.TotalAmount)
	assert.Equal(t, "**** **** **** 4242", o.CardNumber)
	assert.Equal(t, "03/26", o.CardExpiry)
	require.Len(t, items, 1)
	assert.Equal(t, "15.00", items[0].PriceAtPurchase)
	assert.Equal(t, 0, repo.books["9780143127741"].stock)

	// Post-commit side effects.
	assert.Len(t, sink.published, 1)
	assert.Equal(t, []int64{7}, reco.invalidated)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	repo := newStubRepo()
	repo.books["9780143127741"] = &stubBook{title: "Sapiens", price: "15.00", stock: 5, threshold: 2}
	sink := &stubSink{}
	svc := NewService(repo, sink, nil).WithClock(fixedNow)

	_, _, err := svc.PlaceOrder(context.Background(), 7, validRequest(ItemRequest{ISBN: "9780143127741", Quantity: 6}))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "9780143127741", stockErr.ISBN)
	assert.Equal(t, 5, stockErr.Available)

	// Nothing persisted, nothing decremented, nothing published.
	assert.Nil(t, repo.lastOrder)
	assert.Equal(t, 5, repo.books["9780143127741"].stock)
	assert.Empty(t, sink.published)
}

func TestPlaceOrder_UnknownBookFailsWholeOrder(t *testing.T) {
	repo := newStubRepo()
	repo.books["9780143127741"] = &stubBook{title: "Sapiens", price: "15.00", stock: 5, threshold: 2}
	svc := NewService(repo, nil, nil).WithClock(fixedNow)

	_, _, err := svc.PlaceOrder(context.Background(), 7, validRequest(
		ItemRequest{ISBN: "9780143127741", Quantity: 1},
		ItemRequest{ISBN: "0000000000000", Quantity: 1},
	))

	var nfErr *BookNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "0000000000000", nfErr.ISBN)
	assert.Nil(t, repo.lastOrder)
	assert.Equal(t, 5, repo.books["9780143127741"].stock)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil).WithClock(fixedNow)

	_, _, err := svc.PlaceOrder(context.Background(), 7, validRequest())
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Zero(t, repo.placeCalls, "no transaction should be opened")
}

func TestPlaceOrder_CardRejectedBeforeTransaction(t *testing.T) {
	repo := newStubRepo()
	repo.books["9780143127741"] = &stubBook{title: "Sapiens", price: "15.00", stock: 5, threshold: 2}
	svc := NewService(repo, nil, nil).WithClock(fixedNow)

	req := validRequest(ItemRequest{ISBN: "9780143127741", Quantity: 1})
	req.CreditCardExpiry = "01/20"

	_, _, err := svc.PlaceOrder(context.Background(), 7, req)
	require.Error(t, err)
	assert.Zero(t, repo.placeCalls, "card failure must not open a transaction")
}

func TestPlaceOrder_MultiItemTotal(t *testing.T) {
	repo := newStubRepo()
	repo.books["A"] = &stubBook{title: "A", price: "10.50", stock: 3, threshold: 1}
	repo.books["B"] = &stubBook{title: "B", price: "7.25", stock: 2, threshold: 1}
	svc := NewService(repo, nil, nil).WithClock(fixedNow)

	o, items, err := svc.PlaceOrder(context.Background(), 1, validRequest(
		ItemRequest{ISBN: "A", Quantity: 2},
		ItemRequest{ISBN: "B", Quantity: 2},
	))
	require.NoError(t, err)
	assert.Equal(t, "35.50", o.TotalAmount)
	assert.Len(t, items, 2)
}
