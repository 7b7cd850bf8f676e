package invoice

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

func testOrder() *order.Order {
	return &order.Order{
		ID:          42,
		UserID:      7,
		OrderDate:   time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC),
		TotalAmount: "45.00",
		CardNumber:  "**** **** **** 4242",
		CardExpiry:  "03/26",
	}
}

func testUser() *user.User {
	return &user.User{
		ID:        7,
		Username:  "reader7",
		Email:     "reader7@example.com",
		FirstName: "Pat",
		LastName:  "Reyes",
		Address:   "12 Shelf Lane",
	}
}

func TestGenerate(t *testing.T) {
	items := []order.Item{
		{OrderID: 42, BookISBN: "9780143127741", Title: "Sapiens", Quantity: 2, PriceAtPurchase: "15.00"},
		{OrderID: 42, BookISBN: "9780062316097", Title: "Homo Deus", Quantity: 1, PriceAtPurchase: "15.00"},
	}

	pdf, err := Generate(testOrder(), items, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]), "output must start with the PDF magic")
}

func TestGenerate_ZeroItems(t *testing.T) {
	pdf, err := Generate(testOrder(), nil, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestGenerate_Deterministic(t *testing.T) {
	items := []order.Item{
		{OrderID: 42, BookISBN: "9780143127741", Title: "Sapiens", Quantity: 2, PriceAtPurchase: "15.00"},
	}
	a, err := Generate(testOrder(), items, testUser())
	require.NoError(t, err)
	b, err := Generate(testOrder(), items, testUser())
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical input must produce identical bytes")
}

func TestGenerate_BadPriceSnapshot(t *testing.T) {
	items := []order.Item{
		{OrderID: 42, BookISBN: "9780143127741", Title: "Sapiens", Quantity: 1, PriceAtPurchase: "not-a-number"},
	}
	_, err := Generate(testOrder(), items, testUser())
	assert.Error(t, err)
}

func TestGenerate_LongMultibyteTitle(t *testing.T) {
	// 60 two-byte runes; a byte-indexed cut at 40 would land mid-rune.
	long := ""
	for i := 0; i < 60; i++ {
		long += "é"
	}
	items := []order.Item{
		{OrderID: 42, BookISBN: "9780143127741", Title: long, Quantity: 1, PriceAtPurchase: "15.00"},
	}

	pdf, err := Generate(testOrder(), items, testUser())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 40))
	got := truncate("ééééé", 3)
	assert.Equal(t, "ééé", got)
	assert.True(t, utf8.ValidString(got))
}
