package ticket

import "errors"

var (
	ErrMissingTicketID   = errors.New("ticket id is required")
	ErrMissingCustomerID = errors.New("customer id is required")
	ErrEmptyBody         = errors.New("ticket body must not be empty")
	ErrUnknownChannel    = errors.New("unknown ticket channel")
)
