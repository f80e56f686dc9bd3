package models

import "net/url"

// Registration is the handler record this service keeps for its agent on
// the vendor platform. Name is the identity key.
type Registration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CallbackURL string `json:"callback_url"`
	AddressID   string `json:"address_id"`
	Address     string `json:"address"`
}

// Ready reports whether a dialable address is known.
func (r *Registration) Ready() bool {
	return r != nil && r.Address != ""
}

// Redacted returns a copy safe to expose on debug endpoints: the
// password embedded in the callback URL is masked.
func (r Registration) Redacted() Registration {
	if r.CallbackURL == "" {
		return r
	}
	if u, err := url.Parse(r.CallbackURL); err == nil {
		r.CallbackURL = u.Redacted()
	}
	return r
}

// GuestToken is the short-lived credential handed to a browser client,
// together with the address it may dial.
type GuestToken struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}
