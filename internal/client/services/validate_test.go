package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
)

func TestValidateStruct(t *testing.T) {
	require.NoError(t, validateStruct(models.Review{Name: "N", Comment: "C"}))

	err := validateStruct(models.Review{Name: "N", Comment: "C", Rating: 9, Email: "nope"})
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "rating must be at most 5")

	err = validateStruct(models.Property{Title: "T", PropertyType: "castle"})
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Contains(t, err.Error(), "propertyType must be one of")
}

func TestDescriptorDefaults(t *testing.T) {
	b := BlogDescriptor().Prepare(models.Blog{Title: "T", Content: "short body"}, "local-1", fixedNow)
	assert.Equal(t, "short body", b.Excerpt)
	assert.Equal(t, DefaultBlogAuthor, b.Author)
	assert.Equal(t, DefaultBlogCategory, b.Category)
	assert.NotNil(t, b.Tags)

	long := make([]rune, 200)
	for i := range long {
		long[i] = 'é'
	}
	b = BlogDescriptor().Prepare(models.Blog{Title: "T", Content: string(long)}, "local-2", fixedNow)
	assert.Equal(t, excerptLength+3, len([]rune(b.Excerpt)))

	r := ReviewDescriptor().Prepare(models.Review{Name: "N", Comment: "C"}, "local-3", fixedNow)
	assert.Equal(t, DefaultReviewRating, r.Rating)
	assert.Equal(t, DefaultReviewStatus, r.Status)

	c := ContactDescriptor().Prepare(models.Contact{Name: "N"}, "local-4", fixedNow)
	assert.Equal(t, DefaultContactSubject, c.Subject)
	assert.Equal(t, DefaultContactStatus, c.Status)

	v := VisitRequestDescriptor().Prepare(models.VisitRequest{}, "local-5", fixedNow)
	assert.Equal(t, DefaultVisitStatus, v.Status)
	assert.Equal(t, fixedNow, v.CreatedAt)

	p := PropertyDescriptor("").Prepare(models.Property{Images: []string{"a.jpg"}}, "local-6", fixedNow)
	assert.Equal(t, []string{"a.jpg"}, p.Images)
	p = PropertyDescriptor("").Prepare(models.Property{}, "local-7", fixedNow)
	assert.Equal(t, []string{DefaultPlaceholderURL}, p.Images)
}
