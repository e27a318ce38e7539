package models

import "time"

// Record is a resource entity with an identifier. Identifiers are assigned
// by the backend, or by the local store for records created offline.
type Record interface {
	RecordID() string
}

// Entity is a Record with a creation time. All resource records are
// entities; SubAdmin is not.
type Entity interface {
	Record
	Created() time.Time
}

type Location struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type Property struct {
	ID           string    `json:"_id,omitempty"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price" validate:"gte=0"`
	Location     Location  `json:"location"`
	PropertyType string    `json:"propertyType,omitempty" validate:"omitempty,oneof=house apartment condo villa land commercial townhouse"`
	ListingType  string    `json:"listingType,omitempty" validate:"omitempty,oneof=sale rent"`
	Bedrooms     int       `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int       `json:"bathrooms" validate:"gte=0"`
	Area         float64   `json:"area" validate:"gte=0"`
	Images       []string  `json:"images"`
	Features     []string  `json:"features"`
	Status       string    `json:"status,omitempty" validate:"omitempty,oneof=available pending sold rented"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

func (p Property) RecordID() string   { return p.ID }
func (p Property) Created() time.Time { return p.CreatedAt }

type Review struct {
	ID         string    `json:"_id,omitempty"`
	Name       string    `json:"name" validate:"required,max=100"`
	Email      string    `json:"email,omitempty" validate:"omitempty,email"`
	Rating     int       `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment    string    `json:"comment" validate:"required"`
	PropertyID string    `json:"propertyId,omitempty"`
	Status     string    `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

func (r Review) RecordID() string   { return r.ID }
func (r Review) Created() time.Time { return r.CreatedAt }

type Blog struct {
	ID        string    `json:"_id,omitempty"`
	Title     string    `json:"title" validate:"required,max=200"`
	Content   string    `json:"content" validate:"required"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Author    string    `json:"author,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags"`
	Image     string    `json:"image,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (b Blog) RecordID() string   { return b.ID }
func (b Blog) Created() time.Time { return b.CreatedAt }

type Contact struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message" validate:"required"`
	Status    string    `json:"status,omitempty" validate:"omitempty,oneof=new read replied"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (c Contact) RecordID() string   { return c.ID }
func (c Contact) Created() time.Time { return c.CreatedAt }

type VisitRequest struct {
	ID            string    `json:"_id,omitempty"`
	PropertyID    string    `json:"propertyId" validate:"required"`
	PropertyTitle string    `json:"propertyTitle,omitempty"`
	Name          string    `json:"name" validate:"required,max=100"`
	Email         string    `json:"email" validate:"required,email"`
	Phone         string    `json:"phone,omitempty"`
	PreferredDate string    `json:"preferredDate,omitempty"`
	PreferredTime string    `json:"preferredTime,omitempty"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

func (v VisitRequest) RecordID() string   { return v.ID }
func (v VisitRequest) Created() time.Time { return v.CreatedAt }

// SubAdmin is a back-office account managed by the owner.
type SubAdmin struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name" validate:"required"`
	Email       string        `json:"email" validate:"required,email"`
	Password    string        `json:"password,omitempty"`
	Role        Role          `json:"role,omitempty"`
	Permissions PermissionSet `json:"permissions"`
}

func (s SubAdmin) RecordID() string { return s.ID }
