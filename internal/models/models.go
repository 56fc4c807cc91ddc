package models

import "time"

type ContextKey string

// CurrentUser is the identity established by the session guard.
type CurrentUser struct {
	ID    string
	Email string
}

type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// ProfileName is the embedded shape returned by "profiles(full_name)" joins.
type ProfileName struct {
	FullName string `json:"full_name"`
}

type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type CartItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type Order struct {
	ID         int64        `json:"id"`
	UserID     string       `json:"user_id"`
	Items      []CartItem   `json:"items"`
	TotalPrice float64      `json:"total_price"`
	Status     Status       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	Profile    *ProfileName `json:"profiles,omitempty"`
}

type Booking struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	BookingDate string       `json:"booking_date"`
	TimeSlot    string       `json:"time_slot"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Profile     *ProfileName `json:"profiles,omitempty"`
}
