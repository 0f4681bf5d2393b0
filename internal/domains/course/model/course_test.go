package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInReview(t *testing.T) {
	assert.True(t, StatusLegalReview.InReview())
	assert.True(t, StatusInternalReview.InReview())
	assert.True(t, StatusReviewed.InReview())

	assert.False(t, StatusUnpublished.InReview())
	assert.False(t, StatusPublished.InReview())
	assert.False(t, StatusArchived.InReview())
}

func TestAllowedSaveTier(t *testing.T) {
	tests := []struct {
		status CourseRunStatus
		want   SaveTier
	}{
		{StatusPublished, SaveDraftAndOfficial},
		{StatusLegalReview, SaveDraftAndOfficial},
		{StatusInternalReview, SaveDraftAndOfficial},
		{StatusReviewed, SaveDraftAndOfficial},
		{StatusUnpublished, SaveDraftOnly},
		{StatusArchived, SaveDraftOnly},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedSaveTier(tt.status), string(tt.status))
	}
}

func TestRunValue(t *testing.T) {
	run := &CourseRun{Key: "course-v1:edx+csv_123+1T2020a"}
	assert.Equal(t, "1T2020a", run.RunValue())

	assert.Equal(t, "", (&CourseRun{Key: "no-plus"}).RunValue())
}

func TestMetadataClone(t *testing.T) {
	original := &AdditionalMetadata{
		ExternalIdentifier: "12345",
		ProductStatus:      ProductStatusPublished,
		Facts:              []Fact{{Heading: "100", Blurb: "dollars"}},
		ProductMeta:        &ProductMeta{Title: "SEO", Keywords: []string{"a", "b"}},
	}

	clone := original.Clone()
	clone.Facts[0].Heading = "changed"
	clone.ProductMeta.Keywords[0] = "changed"
	clone.ProductStatus = ProductStatusArchived

	assert.Equal(t, "100", original.Facts[0].Heading)
	assert.Equal(t, "a", original.ProductMeta.Keywords[0])
	assert.Equal(t, ProductStatusPublished, original.ProductStatus)
}
