package models

import "errors"

var (
	ErrUnknownStatus       = errors.New("unknown status")
	ErrForbiddenTransition = errors.New("status transition is not allowed")
	ErrUnknownMenuItem     = errors.New("order references an unknown menu item")
	ErrNonPositiveQuantity = errors.New("item quantity must be positive")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFulfilled Status = "fulfilled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Orders move pending -> confirmed -> fulfilled, with cancellation
// possible only while pending.
var orderTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusFulfilled},
}

// Bookings terminate in "completed" instead of "fulfilled".
var bookingTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
}

var knownStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusFulfilled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ParseStatus validates a raw form value against the closed status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !knownStatuses[s] {
		return "", ErrUnknownStatus
	}
	return s, nil
}

func OrderTransitionAllowed(from, to Status) bool {
	return transitionAllowed(orderTransitions, from, to)
}

func BookingTransitionAllowed(from, to Status) bool {
	return transitionAllowed(bookingTransitions, from, to)
}

func transitionAllowed(table map[Status][]Status, from, to Status) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderTotal sums price * quantity over the cart using authoritative
// menu prices. Any item missing from the price lookup rejects the whole
// order rather than silently contributing zero.
func OrderTotal(items []CartItem, prices map[int64]float64) (float64, error) {
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, ErrNonPositiveQuantity
		}

		price, ok := prices[item.ItemID]
		if !ok {
			return 0, ErrUnknownMenuItem
		}

		total += price * float64(item.Quantity)
	}

	return total, nil
}
