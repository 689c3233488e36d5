// Package supplier holds the sourcing-contact entity: where products are
// bought from, with the storefront URL and account email used to order.
package supplier

import (
	"errors"
	"time"
)

// ErrEmptyName indicates a supplier without a name
var ErrEmptyName = errors.New("supplier name cannot be empty")

// Supplier is one sourcing contact. Products reference suppliers by name
// only; deleting a supplier never touches product rows.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks field constraints before persistence.
func (s *Supplier) Validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}
	return nil
}
