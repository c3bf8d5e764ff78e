package api

// Table describes a restaurant table. Tables are immutable once created;
// there is no update or delete operation.
type Table struct {
	// ID is the primary key in the tables collection.
	ID int `json:"id"`

	// Number is the table number guests refer to. Reservations reference
	// this field, not ID.
	Number int `json:"number"`

	// Places is the amount of people that can sit at the table.
	Places int `json:"places"`

	// IsVip reports whether the table is in the VIP hall.
	IsVip bool `json:"isVip"`

	// MinOrder is the deposit required to book the table. Optional.
	MinOrder *int `json:"minOrder,omitempty"`
}

// Reservation describes a booked time slot at a table. Reservations are
// immutable once created.
type Reservation struct {
	// ID is a random UUID assigned at creation. It is internal and
	// excluded from list projections.
	ID string `json:"id"`

	// TableNumber references Table.Number.
	TableNumber int `json:"tableNumber"`

	ClientName  string `json:"clientName"`
	PhoneNumber string `json:"phoneNumber"`

	// Date is a calendar date in yyyy-MM-dd format.
	Date string `json:"date"`

	// SlotTimeStart and SlotTimeEnd are zero-padded 24-hour "HH:MM"
	// strings. The slot is the half-open interval [start, end), so
	// back-to-back reservations do not overlap. Lexicographic comparison
	// is correct for this format.
	SlotTimeStart string `json:"slotTimeStart"`
	SlotTimeEnd   string `json:"slotTimeEnd"`
}

// CreateTableRequest is the POST /tables body. Pointer fields distinguish
// absent values from zero values during presence validation.
type CreateTableRequest struct {
	ID       *int  `json:"id"`
	Number   *int  `json:"number"`
	Places   *int  `json:"places"`
	IsVip    *bool `json:"isVip"`
	MinOrder *int  `json:"minOrder"`
}

// CreateReservationRequest is the POST /reservations body.
type CreateReservationRequest struct {
	TableNumber   *int   `json:"tableNumber"`
	ClientName    string `json:"clientName"`
	PhoneNumber   string `json:"phoneNumber"`
	Date          string `json:"date"`
	SlotTimeStart string `json:"slotTimeStart"`
	SlotTimeEnd   string `json:"slotTimeEnd"`
}

// SignUpRequest is the POST /signup body.
type SignUpRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// SignInRequest is the POST /signin body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the token returned on successful signin. The field
// is named accessToken for compatibility with the upstream contract even
// though the value is the identity token.
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
}

// TableList is the GET /tables response body.
type TableList struct {
	Tables []Table `json:"tables"`
}

// ReservationView is a reservation as projected by GET /reservations:
// all business fields, no internal ID.
type ReservationView struct {
	TableNumber   int    `json:"tableNumber"`
	ClientName    string `json:"clientName"`
	PhoneNumber   string `json:"phoneNumber"`
	Date          string `json:"date"`
	SlotTimeStart string `json:"slotTimeStart"`
	SlotTimeEnd   string `json:"slotTimeEnd"`
}

// ReservationList is the GET /reservations response body.
type ReservationList struct {
	Reservations []ReservationView `json:"reservations"`
}
