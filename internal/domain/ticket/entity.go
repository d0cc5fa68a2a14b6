package ticket

import (
	"time"
)

// Channel identifies where a support ticket originated.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
	ChannelPhone Channel = "phone"
	ChannelWeb   Channel = "web"
)

// Category is the coarse intent of a support ticket.
type Category string

const (
	CategoryRefund    Category = "refund"
	CategoryChargeback Category = "chargeback"
	CategoryAccount   Category = "account"
	CategoryShipping  Category = "shipping"
	CategoryOther     Category = "other"
)

// Ticket is an in-flight support ticket submitted for risk scoring. It
// is input only; the scoring service never mutates it.
type Ticket struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Channel    Channel   `json:"channel"`
	Category   Category  `json:"category"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Text returns the ticket content handed to the text-analysis backends.
func (t *Ticket) Text() string {
	if t.Subject == "" {
		return t.Body
	}
	return t.Subject + "\n\n" + t.Body
}

// Validate checks the ticket carries enough content to be scored.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return ErrMissingTicketID
	}
	if t.CustomerID == "" {
		return ErrMissingCustomerID
	}
	if t.Body == "" {
		return ErrEmptyBody
	}
	switch t.Channel {
	case ChannelEmail, ChannelChat, ChannelPhone, ChannelWeb, "":
	default:
		return ErrUnknownChannel
	}
	return nil
}
