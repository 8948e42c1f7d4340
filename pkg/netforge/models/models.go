// Package models defines typed representations of the most common resource
// collections. They are conveniences for use with the generic decode helpers;
// the client itself stays schema-agnostic, and any collection can always be
// handled as plain records.
package models

import (
	"github.com/netforge-io/netforge/pkg/types"
)

// Ref is the compact form in which one object references another, as nested
// documents inside a parent object.
type Ref struct {
	ID      int    `json:"id"`
	URL     string `json:"url,omitempty"`
	Display string `json:"display,omitempty"`
	Name    string `json:"name,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

// Status is the value/label pair used for choice fields.
type Status struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Site is one entry of the dcim/sites collection. Region and Tenant arrive as
// a nested document or as JSON null, so they stay NullableAny; marshaling a
// null Tenant back is how a patch clears the assignment.
type Site struct {
	ID          int               `json:"id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Status      *Status           `json:"status,omitempty"`
	Description string            `json:"description,omitempty"`
	Region      types.NullableAny `json:"region"`
	Tenant      types.NullableAny `json:"tenant"`
}

// Device is one entry of the dcim/devices collection.
type Device struct {
	ID          int               `json:"id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Name        string            `json:"name"`
	DeviceType  *Ref              `json:"device_type,omitempty"`
	Role        *Ref              `json:"role,omitempty"`
	Site        *Ref              `json:"site,omitempty"`
	Status      *Status           `json:"status,omitempty"`
	Serial      string            `json:"serial,omitempty"`
	Tenant      types.NullableAny `json:"tenant"`
	Description string            `json:"description,omitempty"`
}

// IPAddress is one entry of the ipam/ip-addresses collection. Address carries
// the prefix length, e.g. "10.0.0.1/24".
type IPAddress struct {
	ID          int               `json:"id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Address     string            `json:"address"`
	Status      *Status           `json:"status,omitempty"`
	DNSName     string            `json:"dns_name,omitempty"`
	Description string            `json:"description,omitempty"`
	Tenant      types.NullableAny `json:"tenant"`
}

// Prefix is one entry of the ipam/prefixes collection.
type Prefix struct {
	ID          int               `json:"id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Prefix      string            `json:"prefix"`
	Status      *Status           `json:"status,omitempty"`
	Site        *Ref              `json:"site,omitempty"`
	VLAN        *Ref              `json:"vlan,omitempty"`
	Description string            `json:"description,omitempty"`
	Tenant      types.NullableAny `json:"tenant"`
}

// VLAN is one entry of the ipam/vlans collection. VID is the 802.1Q tag.
type VLAN struct {
	ID          int     `json:"id,omitempty"`
	URL         string  `json:"url,omitempty"`
	VID         int     `json:"vid"`
	Name        string  `json:"name"`
	Status      *Status `json:"status,omitempty"`
	Description string  `json:"description,omitempty"`
}
