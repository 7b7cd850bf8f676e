package order

// ItemRequest is one requested line of a customer order.
// swagger:model ItemRequest
type ItemRequest struct {
	ISBN     string `json:"isbn" binding:"required" example:"9780143127741"`
	Quantity int    `json:"quantity" binding:"required,min=1" example:"2"`
}

// PlaceOrderRequest is the payload of POST /api/orders/place-order.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	Items            []ItemRequest `json:"items" binding:"required,min=1,dive"`
	CreditCardNumber string        `json:"credit_card_number" binding:"required" example:"4242424242424242"`
	CreditCardExpiry string        `json:"credit_card_expiry" binding:"required" example:"03/26"`
}

// PlacePublisherOrderRequest creates a manual replenishment order.
// swagger:model PlacePublisherOrderRequest
type PlacePublisherOrderRequest struct {
	BookISBN      string `json:"book_isbn" binding:"required"`
	OrderQuantity int    `json:"order_quantity" binding:"required,min=1"`
}
