package models

import "strings"

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

func (a Address) String() string {
	parts := []string{a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, strings.TrimSpace(a.PostalCode+" "+a.City))
	return strings.Join(parts, ", ")
}

type Client struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ContactName string   `json:"contact_name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Address     *Address `json:"address,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "nom du client requis"}
	}
	return nil
}
