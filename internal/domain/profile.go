package domain

import "time"

// CustomerProfile holds optional contact details for a customer account.
// A user without any profile row is still a valid customer.
type CustomerProfile struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	City       string     `json:"city,omitempty"`
	PostalCode string     `json:"postalCode,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
}

// CourierProfile marks a user as a delivery courier. Couriers are created by
// admins and soft-disabled via Active rather than deleted, because orders
// keep referencing them.
type CourierProfile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username,omitempty"`
	Phone        string    `json:"phone"`
	Vehicle      string    `json:"vehicle"`
	LicenseNo    string    `json:"licenseNo"`
	DeliveryZone string    `json:"deliveryZone"`
	Active       bool      `json:"active"`
	HiredAt      time.Time `json:"hiredAt"`
}

// AdminProfile grants in-app administrator access when active. Superuser
// status on the user is an independent, always-sufficient credential.
type AdminProfile struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}
