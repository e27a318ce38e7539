package services

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// Defaults applied to records created offline.
const (
	DefaultPropertyStatus = "available"
	DefaultPropertyType   = "house"
	DefaultListingType    = "sale"
	DefaultBlogAuthor     = "Admin"
	DefaultBlogCategory   = "General"
	DefaultReviewRating   = 5
	DefaultReviewStatus   = "pending"
	DefaultContactSubject = "General Inquiry"
	DefaultContactStatus  = "new"
	DefaultVisitStatus    = "pending"
	DefaultPlaceholderURL = "https://placehold.co/800x600?text=Property"
	excerptLength         = 150
)

// PropertyDescriptor describes properties. Images of offline-created
// properties default to placeholder.
func PropertyDescriptor(placeholder string) Descriptor[models.Property] {
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	return Descriptor[models.Property]{
		Name:       "properties",
		Singular:   "property",
		StorageKey: store.KeyProperties,
		Gates: Gates{
			Create: models.PermAddProperty,
			Update: models.PermEditProperty,
			Delete: models.PermDeleteProperty,
		},
		Prepare: func(p models.Property, id string, created time.Time) models.Property {
			p.ID = id
			if p.CreatedAt.IsZero() {
				p.CreatedAt = created
			}
			p.Status = orDefault(p.Status, DefaultPropertyStatus)
			p.PropertyType = orDefault(p.PropertyType, DefaultPropertyType)
			p.ListingType = orDefault(p.ListingType, DefaultListingType)
			if len(p.Images) == 0 {
				p.Images = []string{placeholder}
			}
			if p.Features == nil {
				p.Features = []string{}
			}
			return p
		},
		Match: matchProperty,
	}
}

func matchProperty(p models.Property, params models.ListParams) bool {
	if !containsFold(params.Search, p.Title, p.Description, p.Location.City, p.Location.Address) {
		return false
	}
	f := params.Filters
	if !equalFold(f["status"], p.Status) ||
		!equalFold(f["propertyType"], p.PropertyType) ||
		!equalFold(f["listingType"], p.ListingType) ||
		!equalFold(f["city"], p.Location.City) {
		return false
	}
	if v, err := strconv.ParseFloat(f["minPrice"], 64); err == nil && p.Price < v {
		return false
	}
	if v, err := strconv.ParseFloat(f["maxPrice"], 64); err == nil && p.Price > v {
		return false
	}
	if v, err := strconv.Atoi(f["bedrooms"]); err == nil && p.Bedrooms < v {
		return false
	}
	if v, err := strconv.ParseBool(f["featured"]); err == nil && p.Featured != v {
		return false
	}
	return true
}

func ReviewDescriptor() Descriptor[models.Review] {
	return Descriptor[models.Review]{
		Name:       "reviews",
		Singular:   "review",
		StorageKey: store.KeyReviews,
		Gates: Gates{
			Update: models.PermWriteReview,
			Delete: models.PermDeleteReview,
		},
		Prepare: func(r models.Review, id string, created time.Time) models.Review {
			r.ID = id
			if r.CreatedAt.IsZero() {
				r.CreatedAt = created
			}
			if r.Rating == 0 {
				r.Rating = DefaultReviewRating
			}
			r.Status = orDefault(r.Status, DefaultReviewStatus)
			return r
		},
		Match: func(r models.Review, params models.ListParams) bool {
			return containsFold(params.Search, r.Name, r.Comment) &&
				equalFold(params.Filters["status"], r.Status) &&
				equalFold(params.Filters["propertyId"], r.PropertyID)
		},
	}
}

func BlogDescriptor() Descriptor[models.Blog] {
	return Descriptor[models.Blog]{
		Name:       "blogs",
		Singular:   "blog post",
		StorageKey: store.KeyBlogs,
		Gates: Gates{
			Create: models.PermWriteBlog,
			Update: models.PermWriteBlog,
			Delete: models.PermDeleteBlog,
		},
		Prepare: func(b models.Blog, id string, created time.Time) models.Blog {
			b.ID = id
			if b.CreatedAt.IsZero() {
				b.CreatedAt = created
			}
			if b.Excerpt == "" {
				b.Excerpt = excerpt(b.Content, excerptLength)
			}
			b.Author = orDefault(b.Author, DefaultBlogAuthor)
			b.Category = orDefault(b.Category, DefaultBlogCategory)
			if b.Tags == nil {
				b.Tags = []string{}
			}
			return b
		},
		Match: func(b models.Blog, params models.ListParams) bool {
			if !containsFold(params.Search, b.Title, b.Content, b.Excerpt) ||
				!equalFold(params.Filters["category"], b.Category) {
				return false
			}
			if v, err := strconv.ParseBool(params.Filters["published"]); err == nil && b.Published != v {
				return false
			}
			return true
		},
	}
}

func ContactDescriptor() Descriptor[models.Contact] {
	return Descriptor[models.Contact]{
		Name:       "contacts",
		Singular:   "message",
		StorageKey: store.KeyContacts,
		Gates: Gates{
			List:   models.PermViewMessages,
			Get:    models.PermViewMessages,
			Update: models.PermViewMessages,
			Delete: models.PermDeleteMessages,
		},
		Prepare: func(c models.Contact, id string, created time.Time) models.Contact {
			c.ID = id
			if c.CreatedAt.IsZero() {
				c.CreatedAt = created
			}
			c.Subject = orDefault(c.Subject, DefaultContactSubject)
			c.Status = orDefault(c.Status, DefaultContactStatus)
			return c
		},
		Match: func(c models.Contact, params models.ListParams) bool {
			return containsFold(params.Search, c.Name, c.Email, c.Subject, c.Message) &&
				equalFold(params.Filters["status"], c.Status)
		},
	}
}

func VisitRequestDescriptor() Descriptor[models.VisitRequest] {
	return Descriptor[models.VisitRequest]{
		Name:       "visit requests",
		Singular:   "visit request",
		StorageKey: store.KeyVisitRequests,
		Gates: Gates{
			List:   models.PermViewInquiries,
			Get:    models.PermViewInquiries,
			Update: models.PermViewInquiries,
			Delete: models.PermViewInquiries,
		},
		Prepare: func(v models.VisitRequest, id string, created time.Time) models.VisitRequest {
			v.ID = id
			if v.CreatedAt.IsZero() {
				v.CreatedAt = created
			}
			v.Status = orDefault(v.Status, DefaultVisitStatus)
			return v
		},
		Match: func(v models.VisitRequest, params models.ListParams) bool {
			return containsFold(params.Search, v.Name, v.Email, v.PropertyTitle, v.Message) &&
				equalFold(params.Filters["status"], v.Status) &&
				equalFold(params.Filters["propertyId"], v.PropertyID)
		},
	}
}

// Catalog holds the resource services of every resource type.
type Catalog struct {
	Properties    *ResourceService[models.Property]
	Reviews       *ResourceService[models.Review]
	Blogs         *ResourceService[models.Blog]
	Contacts      *ResourceService[models.Contact]
	VisitRequests *ResourceService[models.VisitRequest]
}

// NewCatalog wires every resource to its backend path on c.
func NewCatalog(c *client.Client, st store.PersistentStore, auth Authorizer, log logging.Logger, placeholder string, opts ResourceOptions) *Catalog {
	return &Catalog{
		Properties: NewResourceService(PropertyDescriptor(placeholder),
			client.NewResource[models.Property](c, "/properties", "properties", "property"), st, auth, log, opts),
		Reviews: NewResourceService(ReviewDescriptor(),
			client.NewResource[models.Review](c, "/reviews", "reviews", "review"), st, auth, log, opts),
		Blogs: NewResourceService(BlogDescriptor(),
			client.NewResource[models.Blog](c, "/blogs", "blogs", "blog"), st, auth, log, opts),
		Contacts: NewResourceService(ContactDescriptor(),
			client.NewResource[models.Contact](c, "/contacts", "contacts", "contact"), st, auth, log, opts),
		VisitRequests: NewResourceService(VisitRequestDescriptor(),
			client.NewResource[models.VisitRequest](c, "/visit-requests", "visitRequests", "visitRequest"), st, auth, log, opts),
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// containsFold is true when needle is empty or a case-insensitive substring
// of any of the fields.
func containsFold(needle string, fields ...string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// equalFold is true when want is empty or equals got ignoring case.
func equalFold(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}
