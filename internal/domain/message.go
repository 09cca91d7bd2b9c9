package domain

import "time"

// Message is one entry in the flat directed message log. Threads are
// reconstructed by querying both directions of a user pair; there is no
// stored thread or channel field.
type Message struct {
	ID            string    `json:"id"`
	SenderID      string    `json:"senderId"`
	SenderName    string    `json:"senderName,omitempty"`
	RecipientID   string    `json:"recipientId"`
	RecipientName string    `json:"recipientName,omitempty"`
	Body          string    `json:"body"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UnreadCounts partitions a recipient's unread messages by the role of the
// sender, determined by courier profile presence rather than a stored tag.
type UnreadCounts struct {
	FromAdmins    int `json:"fromAdmins"`
	FromCouriers  int `json:"fromCouriers"`
	FromCustomers int `json:"fromCustomers"`
	Total         int `json:"total"`
}

// InboxSender is a distinct correspondent in an inbox listing with the
// number of their messages still unread.
type InboxSender struct {
	User      User `json:"user"`
	IsCourier bool `json:"isCourier"`
	Unread    int  `json:"unread"`
}
