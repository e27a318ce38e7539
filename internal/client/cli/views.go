package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/client/images"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
)

func newView[R models.Entity](a *App, svc resourceService[R], aliases []string) *resourceView[R] {
	return &resourceView[R]{
		svc:     svc,
		aliases: aliases,
		printf:  a.printf,
		prompt:  func() *prompter { return newPrompter(a.reader, a.out) },
	}
}

func (a *App) buildViews() []resourceCmd {
	props := newView[models.Property](a, a.catalog.Properties, []string{"property", "props"})
	props.row, props.detail, props.form = propertyRow, propertyDetail, a.propertyForm

	reviews := newView[models.Review](a, a.catalog.Reviews, []string{"review"})
	reviews.row, reviews.detail, reviews.form = reviewRow, reviewDetail, reviewForm

	blogs := newView[models.Blog](a, a.catalog.Blogs, []string{"blog", "posts"})
	blogs.row, blogs.detail, blogs.form = blogRow, blogDetail, blogForm

	contacts := newView[models.Contact](a, a.catalog.Contacts, []string{"contact", "messages"})
	contacts.row, contacts.detail, contacts.form = contactRow, contactDetail, contactForm

	visits := newView[models.VisitRequest](a, a.catalog.VisitRequests, []string{"visits", "visit", "visitrequests", "inquiries"})
	visits.row, visits.detail, visits.form = visitRow, visitDetail, visitForm

	return []resourceCmd{props, reviews, blogs, contacts, visits}
}

func money(f float64) string {
	return "$" + strconv.FormatFloat(f, 'f', 0, 64)
}

func propertyRow(p models.Property) string {
	return fmt.Sprintf("%-32s %-10s %-10s %s", truncate(p.Title, 32), money(p.Price), p.Status, p.Location.City)
}

func propertyDetail(p models.Property) []field {
	loc := strings.Join(nonEmpty(p.Location.Address, p.Location.City, p.Location.State, p.Location.ZipCode), ", ")
	return []field{
		{"title", p.Title},
		{"price", money(p.Price)},
		{"type", strings.TrimSpace(p.PropertyType + " for " + p.ListingType)},
		{"status", p.Status},
		{"location", loc},
		{"rooms", fmt.Sprintf("%d bd / %d ba, %s sqft", p.Bedrooms, p.Bathrooms, formatFloat(p.Area))},
		{"featured", strconv.FormatBool(p.Featured)},
		{"features", strings.Join(p.Features, ", ")},
		{"images", strings.Join(p.Images, "\n               ")},
		{"description", p.Description},
	}
}

// propertyForm asks for every property field. Image entries that are
// local file paths are uploaded; an empty image list gets the placeholder.
func (a *App) propertyForm(ctx context.Context, p *prompter, cur models.Property) models.Property {
	cur.Title = p.text("Title", cur.Title)
	cur.Description = p.multiline("Description", cur.Description)
	cur.Price = p.float("Price", cur.Price)
	cur.Location.Address = p.text("Address", cur.Location.Address)
	cur.Location.City = p.text("City", cur.Location.City)
	cur.Location.State = p.text("State", cur.Location.State)
	cur.Location.ZipCode = p.text("Zip code", cur.Location.ZipCode)
	cur.PropertyType = p.text("Type (house, apartment, condo, villa, land, commercial, townhouse)", cur.PropertyType)
	cur.ListingType = p.text("Listing (sale, rent)", cur.ListingType)
	cur.Status = p.text("Status (available, pending, sold, rented)", cur.Status)
	cur.Bedrooms = p.int("Bedrooms", cur.Bedrooms)
	cur.Bathrooms = p.int("Bathrooms", cur.Bathrooms)
	cur.Area = p.float("Area (sqft)", cur.Area)
	cur.Features = p.list("Features", cur.Features)
	cur.Featured = p.yesNo("Featured", cur.Featured)
	refs := p.list("Images, URLs or local files", cur.Images)
	if p.err != nil {
		return cur
	}
	cur.Images = images.Resolve(ctx, a.uploader, refs, a.config.PlaceholderImageURL, a.log)
	return cur
}

func reviewRow(r models.Review) string {
	return fmt.Sprintf("%-24s %s %-9s %s", truncate(r.Name, 24), stars(r.Rating), r.Status, truncate(r.Comment, 40))
}

func reviewDetail(r models.Review) []field {
	return []field{
		{"name", r.Name},
		{"email", r.Email},
		{"rating", stars(r.Rating)},
		{"status", r.Status},
		{"property", r.PropertyID},
		{"comment", r.Comment},
	}
}

func reviewForm(_ context.Context, p *prompter, cur models.Review) models.Review {
	cur.Name = p.text("Name", cur.Name)
	cur.Email = p.text("Email", cur.Email)
	cur.Rating = p.int("Rating (1-5)", cur.Rating)
	cur.PropertyID = p.text("Property id (optional)", cur.PropertyID)
	cur.Comment = p.multiline("Comment", cur.Comment)
	if cur.ID != "" {
		cur.Status = p.text("Status (pending, approved, rejected)", cur.Status)
	}
	return cur
}

func blogRow(b models.Blog) string {
	state := "draft"
	if b.Published {
		state = "published"
	}
	return fmt.Sprintf("%-40s %-10s %s", truncate(b.Title, 40), state, b.Category)
}

func blogDetail(b models.Blog) []field {
	return []field{
		{"title", b.Title},
		{"author", b.Author},
		{"category", b.Category},
		{"tags", strings.Join(b.Tags, ", ")},
		{"published", strconv.FormatBool(b.Published)},
		{"image", b.Image},
		{"excerpt", b.Excerpt},
		{"content", b.Content},
	}
}

func blogForm(_ context.Context, p *prompter, cur models.Blog) models.Blog {
	cur.Title = p.text("Title", cur.Title)
	cur.Content = p.multiline("Content", cur.Content)
	cur.Excerpt = p.text("Excerpt (empty derives it from the content)", cur.Excerpt)
	cur.Author = p.text("Author", cur.Author)
	cur.Category = p.text("Category", cur.Category)
	cur.Tags = p.list("Tags", cur.Tags)
	cur.Image = p.text("Image URL", cur.Image)
	cur.Published = p.yesNo("Published", cur.Published)
	return cur
}

func contactRow(c models.Contact) string {
	return fmt.Sprintf("%-24s %-28s %-8s %s", truncate(c.Name, 24), truncate(c.Email, 28), c.Status, truncate(c.Subject, 30))
}

func contactDetail(c models.Contact) []field {
	return []field{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"subject", c.Subject},
		{"status", c.Status},
		{"message", c.Message},
	}
}

// contactForm asks for a new message; editing an existing one only changes
// its status.
func contactForm(_ context.Context, p *prompter, cur models.Contact) models.Contact {
	if cur.ID != "" {
		cur.Status = p.text("Status (new, read, replied)", cur.Status)
		return cur
	}
	cur.Name = p.text("Name", cur.Name)
	cur.Email = p.text("Email", cur.Email)
	cur.Phone = p.text("Phone", cur.Phone)
	cur.Subject = p.text("Subject", cur.Subject)
	cur.Message = p.multiline("Message", cur.Message)
	return cur
}

func visitRow(v models.VisitRequest) string {
	when := strings.TrimSpace(v.PreferredDate + " " + v.PreferredTime)
	return fmt.Sprintf("%-24s %-30s %-10s %s", truncate(v.Name, 24), truncate(v.PropertyTitle, 30), v.Status, when)
}

func visitDetail(v models.VisitRequest) []field {
	return []field{
		{"name", v.Name},
		{"email", v.Email},
		{"phone", v.Phone},
		{"property", strings.TrimSpace(v.PropertyTitle + " " + v.PropertyID)},
		{"date", strings.TrimSpace(v.PreferredDate + " " + v.PreferredTime)},
		{"status", v.Status},
		{"message", v.Message},
	}
}

func visitForm(_ context.Context, p *prompter, cur models.VisitRequest) models.VisitRequest {
	if cur.ID != "" {
		cur.Status = p.text("Status (pending, confirmed, completed, cancelled)", cur.Status)
		cur.PreferredDate = p.text("Preferred date", cur.PreferredDate)
		cur.PreferredTime = p.text("Preferred time", cur.PreferredTime)
		return cur
	}
	cur.PropertyID = p.text("Property id", cur.PropertyID)
	cur.PropertyTitle = p.text("Property title", cur.PropertyTitle)
	cur.Name = p.text("Name", cur.Name)
	cur.Email = p.text("Email", cur.Email)
	cur.Phone = p.text("Phone", cur.Phone)
	cur.PreferredDate = p.text("Preferred date (YYYY-MM-DD)", cur.PreferredDate)
	cur.PreferredTime = p.text("Preferred time", cur.PreferredTime)
	cur.Message = p.multiline("Message", cur.Message)
	return cur
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
