package models

import "time"

// Channel identifies a sales marketplace.
type Channel string

const (
	ChannelAjio     Channel = "ajio"
	ChannelTataCliq Channel = "tatacliq"
	ChannelShopify  Channel = "shopify"
	ChannelNykaa    Channel = "nykaa"
	ChannelMyntra   Channel = "myntra"
)

// Channels lists every recognized marketplace.
var Channels = []Channel{
	ChannelAjio,
	ChannelTataCliq,
	ChannelShopify,
	ChannelNykaa,
	ChannelMyntra,
}

// Listing status values. Single-channel feeds may carry the vendor's
// own status string through unchanged, so Status is not a closed enum.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UploadRecord is one normalized row of a channel export. Records are
// created once per parsed row and never mutated; a failed upload is
// retried by re-parsing the file.
type UploadRecord struct {
	StyleNumber int     `json:"styleNumber"`
	Channel     Channel `json:"channel"`
	ProductID   string  `json:"product_id"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

// MarketplaceListing is the channel-specific representation of a style,
// owned by the remote API and referenced read-only by the client.
type MarketplaceListing struct {
	Channel   string  `json:"channel"`
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// Product groups the marketplace listings of one style. The server
// enforces at most one listing per (styleNumber, channel) pair.
type Product struct {
	ID          string               `json:"_id"`
	StyleNumber int                  `json:"styleNumber"`
	Listings    []MarketplaceListing `json:"marketPlaceDetails"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// User is the authenticated operator.
type User struct {
	Username   string `json:"username"`
	EmployeeID int    `json:"employee_id"`
}

// BulkResult is the server's summary of a bulk upsert: listings newly
// inserted vs. updated in place.
type BulkResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}
