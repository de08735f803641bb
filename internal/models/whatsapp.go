package models

// NotifierStatus describes the sync report notifier
type NotifierStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	LoggedIn  bool   `json:"logged_in"`
	Recipient string `json:"recipient,omitempty"`
}
