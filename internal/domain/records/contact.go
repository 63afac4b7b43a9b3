package records

import (
	"net/mail"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Contact is a person or company the business deals with
type Contact struct {
	shared.BaseEntity
	Name      string     `gorm:"type:varchar(200);not null" json:"name"`
	Company   string     `gorm:"type:varchar(200);index" json:"company"`
	Email     string     `gorm:"type:varchar(200)" json:"email"`
	Phone     string     `gorm:"type:varchar(50)" json:"phone"`
	Position  string     `gorm:"type:varchar(100)" json:"position"`
	Area      string     `gorm:"type:varchar(100);index" json:"area"`
	Subarea   string     `gorm:"type:varchar(100)" json:"subarea"`
	Address   string     `gorm:"type:text" json:"address"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// ContactInput holds the editable contact fields
type ContactInput struct {
	Name     string
	Company  string
	Email    string
	Phone    string
	Position string
	Area     string
	Subarea  string
	Address  string
	Notes    string
}

// NewContact creates a contact
func NewContact(in ContactInput, createdBy *uuid.UUID) (*Contact, error) {
	c := &Contact{BaseEntity: shared.NewBaseEntity(), CreatedBy: createdBy}
	if err := c.Update(in); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Contact) Update(in ContactInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.InvalidInput("name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.InvalidInput("invalid email %q", email)
		}
	}
	c.Name = name
	c.Company = strings.TrimSpace(in.Company)
	c.Email = email
	c.Phone = strings.TrimSpace(in.Phone)
	c.Position = in.Position
	c.Area = strings.TrimSpace(in.Area)
	c.Subarea = strings.TrimSpace(in.Subarea)
	c.Address = in.Address
	c.Notes = in.Notes
	c.Touch()
	return nil
}
