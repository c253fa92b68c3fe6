package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qurvii/stylesync/pkg/models"
)

// feedColumns names the headers a profile reads from its feed. The
// channel column is only present on combined feeds.
type feedColumns struct {
	sku     string
	id      string
	price   string
	status  string
	channel string
}

// Profile describes one upload screen: which feed format it accepts and
// which marketplace(s) the rows belong to.
type Profile struct {
	Name     string
	Combined bool           // rows carry their own channel column
	Channel  models.Channel // fixed channel for single-channel feeds
	cols     feedColumns
}

// Profiles for the four supported upload screens. The OMS export mixes
// every channel the order-management system syncs; only AJIO and Tata
// CLiQ rows are taken from it, the rest have dedicated seller-panel
// exports.
var profiles = map[string]*Profile{
	"oms": {
		Name:     "oms",
		Combined: true,
		cols: feedColumns{
			sku:     "Channel Listing SKU Code",
			id:      "Channel Listing Id",
			price:   "Product MRP",
			status:  "Listing Status",
			channel: "Channel Name",
		},
	},
	"myntra": {
		Name:    "myntra",
		Channel: models.ChannelMyntra,
		cols: feedColumns{
			sku:    "seller sku code",
			id:     "style id",
			price:  "mrp",
			status: "style status description",
		},
	},
	"shopify": {
		Name:    "shopify",
		Channel: models.ChannelShopify,
		cols: feedColumns{
			sku:    "Variant SKU",
			id:     "Handle",
			price:  "Variant Price",
			status: "Status",
		},
	},
	"nykaa": {
		Name:    "nykaa",
		Channel: models.ChannelNykaa,
		cols: feedColumns{
			sku:    "seller sku code",
			id:     "sku id",
			price:  "mrp",
			status: "status",
		},
	},
}

// ProfileFor looks up a profile by upload screen name.
func ProfileFor(name string) (*Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q (choose one of: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames returns the supported upload screen names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requiredColumns lists the headers the profile cannot work without.
func (p *Profile) requiredColumns() []string {
	cols := []string{p.cols.sku, p.cols.id, p.cols.price, p.cols.status}
	if p.Combined {
		cols = append(cols, p.cols.channel)
	}
	return cols
}
