package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursemodel "catalog-backend/internal/domains/course/model"
	courserepo "catalog-backend/internal/domains/course/repository"
	orgmodel "catalog-backend/internal/domains/organization/model"
	orgrepo "catalog-backend/internal/domains/organization/repository"
	"catalog-backend/internal/infrastructure/email"

	"catalog-backend/internal/domains/ingestion/model"
)

type fakeStudio struct {
	createdRuns []string
	updatedRuns []string
	reruns      []string
	imagePushes []string
	failCreate  bool
}

func (s *fakeStudio) CreateCourseRun(_ context.Context, run *coursemodel.CourseRun, _, _ string) error {
	if s.failCreate {
		return errors.New("studio unavailable")
	}
	s.createdRuns = append(s.createdRuns, run.Key)
	return nil
}

func (s *fakeStudio) UpdateCourseRun(_ context.Context, run *coursemodel.CourseRun, _, _ string) error {
	s.updatedRuns = append(s.updatedRuns, run.Key)
	return nil
}

func (s *fakeStudio) RerunCourseRun(_ context.Context, oldRunKey, newRunKey, _ string) error {
	s.reruns = append(s.reruns, oldRunKey+" -> "+newRunKey)
	return nil
}

func (s *fakeStudio) PushCourseRunImage(_ context.Context, runKey string, _ []byte) error {
	s.imagePushes = append(s.imagePushes, runKey)
	return nil
}

type fakeEcommerce struct {
	published []string
}

func (e *fakeEcommerce) PublishCourse(_ context.Context, _ uuid.UUID, courseKey string) error {
	e.published = append(e.published, courseKey)
	return nil
}

type pricingCall struct {
	mode  string
	price decimal.Decimal
}

type fakePricing struct {
	calls []pricingCall
	fail  bool
}

func (p *fakePricing) UpdateEntitlementPrice(_ context.Context, _ uuid.UUID, mode string, price decimal.Decimal) error {
	if p.fail {
		return errors.New("pricing api down")
	}
	p.calls = append(p.calls, pricingCall{mode: mode, price: price})
	return nil
}

type fakeImages struct {
	failImage bool
	failLogo  bool
}

func (i *fakeImages) AttachCourseImage(_ context.Context, course *coursemodel.Course, _ string) ([]byte, error) {
	if i.failImage {
		return nil, errors.New("image host timeout")
	}
	course.ImageKey = fmt.Sprintf("media/course/image/%s.jpg", course.UUID)
	return []byte("image-bytes"), nil
}

func (i *fakeImages) AttachLogoOverride(_ context.Context, course *coursemodel.Course, _ string) error {
	if i.failLogo {
		return errors.New("logo host timeout")
	}
	course.LogoOverrideKey = fmt.Sprintf("media/course/logo/%s.jpg", course.UUID)
	return nil
}

type fakeEmails struct {
	sent []email.LegalReviewData
}

func (e *fakeEmails) SendLegalReviewEmail(_ context.Context, data email.LegalReviewData) error {
	e.sent = append(e.sent, data)
	return nil
}

type loaderFixture struct {
	courses   *courserepo.MemoryRepository
	orgs      *orgrepo.MemoryRepository
	studio    *fakeStudio
	ecommerce *fakeEcommerce
	pricing   *fakePricing
	images    *fakeImages
	emails    *fakeEmails
	opts      LoaderOptions
}

func newLoaderFixture() *loaderFixture {
	orgs := orgrepo.NewMemoryRepository()
	orgs.AddOrganization(&orgmodel.Organization{UUID: uuid.New(), Partner: "edx", Key: "edx", Name: "edX"})
	orgs.AddCourseType(&orgmodel.CourseType{
		UUID: uuid.New(), Name: "Verified and Audit",
		Slug: orgmodel.CourseTypeVerifiedAudit, EntitlementMode: coursemodel.ModeVerified,
	})
	orgs.AddCourseType(&orgmodel.CourseType{
		UUID: uuid.New(), Name: "Executive Education(2U)",
		Slug: orgmodel.CourseTypeExecutiveEducation, EntitlementMode: coursemodel.ModePaidExecutiveEd,
	})
	orgs.AddCourseRunType(&orgmodel.CourseRunType{
		UUID: uuid.New(), Name: "Verified and Audit", Slug: "verified-audit", SeatType: coursemodel.ModeVerified,
	})
	orgs.AddCourseRunType(&orgmodel.CourseRunType{
		UUID: uuid.New(), Name: "Unpaid Executive Education", Slug: "unpaid-executive-education",
		SeatType: coursemodel.ModePaidExecutiveEd,
	})
	orgs.AddSource(&orgmodel.Source{UUID: uuid.New(), Name: "External Source", Slug: "ext_source"})
	orgs.AddSource(&orgmodel.Source{UUID: uuid.New(), Name: "Other Source", Slug: "dbz_source"})

	return &loaderFixture{
		courses:   courserepo.NewMemoryRepository(),
		orgs:      orgs,
		studio:    &fakeStudio{},
		ecommerce: &fakeEcommerce{},
		pricing:   &fakePricing{},
		images:    &fakeImages{},
		emails:    &fakeEmails{},
		opts: LoaderOptions{
			Partner:           "edx",
			ProductSource:     "ext_source",
			ExternalSource:    "ext_source",
			VariantIDEditable: true,
			Actor:             "ingestion-bot",
		},
	}
}

func (f *loaderFixture) ingest(t *testing.T, rows ...*model.CourseRow) *model.IngestionStats {
	t.Helper()
	loader := NewCSVLoader(f.opts, f.courses, f.orgs, f.studio, f.ecommerce, f.pricing, f.images, f.emails)
	stats, err := loader.Ingest(context.Background(), rows)
	require.NoError(t, err)
	return stats
}

// verifiedRow is a complete verified-track row with a past start date.
func verifiedRow() *model.CourseRow {
	row := completeRow()
	row.CourseEnrollmentTrack = "Verified and Audit"
	row.CourseRunEnrollmentTrack = "Verified and Audit"
	return row
}

func TestIngestCreatesDraftAndOfficialPair(t *testing.T) {
	f := newLoaderFixture()
	stats := f.ingest(t, verifiedRow())

	assert.Equal(t, 1, stats.TotalProductsCount)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 0, stats.FailureCount)
	require.Len(t, stats.CreatedProducts, 1)
	require.NotNil(t, stats.CreatedProducts[0].Rerun)
	assert.True(t, *stats.CreatedProducts[0].Rerun)
	assert.Equal(t, "csv-course", stats.CreatedProducts[0].URLSlug)

	all, official := f.courses.CountCourses()
	assert.Equal(t, 2, all, "draft and official rows")
	assert.Equal(t, 1, official)

	draft, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+csv_123", true)
	require.NoError(t, err)
	officialCourse, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+csv_123", false)
	require.NoError(t, err)
	assert.Equal(t, draft.UUID, officialCourse.UUID, "pair shares the uuid")
	assert.Equal(t, "ext_source", draft.ProductSource)
	assert.Equal(t, "<p>A short description</p>", draft.ShortDescription)

	// Start date 01/25/2022 falls in the first trimester.
	run, err := f.courses.GetRunByKey(context.Background(), "course-v1:edx+csv_123+1T2022", true)
	require.NoError(t, err)
	assert.Equal(t, coursemodel.StatusPublished, run.Status)
	assert.Equal(t, "en-us", run.Language)
	assert.Equal(t, "instructor_paced", run.Pacing)

	seat, err := f.courses.GetSeatForRun(context.Background(), run.UUID, true)
	require.NoError(t, err)
	assert.True(t, seat.Price.Equal(decimal.NewFromInt(50)))

	entitlement, err := f.courses.GetEntitlement(context.Background(), draft.UUID, true)
	require.NoError(t, err)
	assert.Equal(t, coursemodel.ModeVerified, entitlement.Mode)
	assert.True(t, entitlement.Price.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, []string{"course-v1:edx+csv_123+1T2022"}, f.studio.createdRuns)
	assert.Equal(t, []string{"course-v1:edx+csv_123+1T2022"}, f.studio.imagePushes)
	assert.Equal(t, []string{"edx+csv_123"}, f.ecommerce.published)
	require.Len(t, f.pricing.calls, 1)
	assert.Equal(t, coursemodel.ModeVerified, f.pricing.calls[0].mode)
}

func TestIngestUnknownSourceAborts(t *testing.T) {
	f := newLoaderFixture()
	f.opts.ProductSource = "unknown_source"

	loader := NewCSVLoader(f.opts, f.courses, f.orgs, f.studio, f.ecommerce, f.pricing, f.images, f.emails)
	stats, err := loader.Ingest(context.Background(), []*model.CourseRow{verifiedRow()})
	require.Error(t, err)
	assert.Nil(t, stats)

	all, _ := f.courses.CountCourses()
	assert.Zero(t, all)
}

func TestIngestMissingOrganization(t *testing.T) {
	f := newLoaderFixture()
	row := verifiedRow()
	row.Organization = "invalid_org"

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.FailureCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.MissingOrganization, stats.Errors[0].Code)
	assert.Equal(t,
		"Unable to locate partner organization with key invalid_org for the course titled CSV Course.",
		stats.Errors[0].Message)

	all, _ := f.courses.CountCourses()
	assert.Zero(t, all)
}

func TestIngestMissingCourseType(t *testing.T) {
	f := newLoaderFixture()
	row := verifiedRow()
	row.CourseEnrollmentTrack = "invalid track"

	stats := f.ingest(t, row)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.MissingCourseType, stats.Errors[0].Code)
	assert.Equal(t,
		`Unable to find the course enrollment track "invalid track" for the course CSV Course`,
		stats.Errors[0].Message)
}

func TestIngestMissingCourseRunType(t *testing.T) {
	f := newLoaderFixture()
	row := verifiedRow()
	row.CourseRunEnrollmentTrack = "invalid track"

	stats := f.ingest(t, row)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.MissingCourseRunType, stats.Errors[0].Code)
}

func TestIngestMissingRequiredDataWritesNothing(t *testing.T) {
	f := newLoaderFixture()
	row := verifiedRow()
	row.Image = ""
	row.StartDate = ""

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.FailureCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.MissingRequiredData, stats.Errors[0].Code)
	assert.Contains(t, stats.Errors[0].Message, `"cardUrl, start_date"`)

	all, _ := f.courses.CountCourses()
	assert.Zero(t, all)
	assert.Empty(t, f.studio.createdRuns)
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	f := newLoaderFixture()

	first := f.ingest(t, verifiedRow())
	assert.Equal(t, 1, first.CreatedProductsCount)

	second := f.ingest(t, verifiedRow())
	assert.Equal(t, 0, second.CreatedProductsCount)
	assert.Equal(t, 1, second.UpdatedProductsCount)
	require.NotNil(t, second.UpdatedProducts[0].Rerun)
	assert.False(t, *second.UpdatedProducts[0].Rerun)

	all, official := f.courses.CountCourses()
	assert.Equal(t, 2, all, "re-ingestion must not duplicate the pair")
	assert.Equal(t, 1, official)

	runsAll, runsOfficial := f.courses.CountRuns()
	assert.Equal(t, 2, runsAll)
	assert.Equal(t, 1, runsOfficial)
}

func TestIngestFutureStartStaysDraft(t *testing.T) {
	f := newLoaderFixture()
	row := verifiedRow()
	row.StartDate = "01/25/2050"

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.SuccessCount)

	_, official := f.courses.CountCourses()
	assert.Zero(t, official, "unpublished runs never propagate to official")

	run, err := f.courses.GetRunByKey(context.Background(), "course-v1:edx+csv_123+1T2050", true)
	require.NoError(t, err)
	assert.Equal(t, coursemodel.StatusUnpublished, run.Status)

	assert.Empty(t, f.ecommerce.published)
	require.Len(t, f.emails.sent, 1, "draft courses request legal review")
	assert.Equal(t, "edx+csv_123", f.emails.sent[0].CourseKey)
}

func TestIngestStudioFailureKeepsCatalogRows(t *testing.T) {
	f := newLoaderFixture()
	f.studio.failCreate = true

	stats := f.ingest(t, verifiedRow())
	assert.Equal(t, 1, stats.FailureCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.CourseCreateError, stats.Errors[0].Code)

	// The course stays so a retry can repair the studio side.
	_, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+csv_123", true)
	assert.NoError(t, err)
}

func TestIngestImageFailureIsNonFatal(t *testing.T) {
	f := newLoaderFixture()
	f.images.failImage = true

	stats := f.ingest(t, verifiedRow())
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 0, stats.FailureCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.ImageDownloadFailure, stats.Errors[0].Code)
	assert.Equal(t, "The course image download failed for the course CSV Course.", stats.Errors[0].Message)
	assert.Empty(t, f.studio.imagePushes)
}

func TestIngestPricingFailureIsNonFatal(t *testing.T) {
	f := newLoaderFixture()
	f.pricing.fail = true

	stats := f.ingest(t, verifiedRow())
	assert.Equal(t, 1, stats.SuccessCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.EntitlementPriceUpdateError, stats.Errors[0].Code)
}

func TestIngestSlugCollision(t *testing.T) {
	f := newLoaderFixture()
	f.orgs.AddOrganization(&orgmodel.Organization{UUID: uuid.New(), Partner: "edx", Key: "mitx", Name: "MITx"})

	// Identical titles under different organizations share a slug namespace
	// within the partner.
	first := verifiedRow()
	second := verifiedRow()
	second.Organization = "mitx"

	stats := f.ingest(t, first, second)
	assert.Equal(t, 2, stats.CreatedProductsCount)
	assert.Equal(t, "csv-course", stats.CreatedProducts[0].URLSlug)
	assert.Equal(t, "csv-course-2", stats.CreatedProducts[1].URLSlug)

	_, err := f.courses.GetCourseByKey(context.Background(), "edx", "mitx+csv_123", true)
	assert.NoError(t, err)
}

func TestIngestRerunGetsLetterSuffix(t *testing.T) {
	f := newLoaderFixture()
	f.opts.VariantIDEditable = false
	f.ingest(t, verifiedRow())

	// Same course, new dates in the same trimester: no run matches, so the
	// loader provisions a rerun via the studio.
	row := verifiedRow()
	row.StartDate = "02/25/2022"
	row.EndDate = "03/25/2055"

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.CreatedProductsCount, "a rerun reports as created")
	require.NotNil(t, stats.CreatedProducts[0].Rerun)
	assert.True(t, *stats.CreatedProducts[0].Rerun)

	require.Len(t, f.studio.reruns, 1)
	assert.Equal(t, "course-v1:edx+csv_123+1T2022 -> course-v1:edx+csv_123+1T2022a", f.studio.reruns[0])

	_, err := f.courses.GetRunByKey(context.Background(), "course-v1:edx+csv_123+1T2022a", true)
	assert.NoError(t, err)
}

func TestIngestInvalidLanguageRejectsRunOnly(t *testing.T) {
	f := newLoaderFixture()
	f.ingest(t, verifiedRow())

	row := verifiedRow()
	row.ContentLanguage = "Klingon"

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.FailureCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, model.CourseRunUpdateError, stats.Errors[0].Code)

	// The run keeps its previous language.
	run, err := f.courses.GetRunByKey(context.Background(), "course-v1:edx+csv_123+1T2022", true)
	require.NoError(t, err)
	assert.Equal(t, "en-us", run.Language)
}

func execEdIngestRow() *model.CourseRow {
	row := execEdRow()
	row.CourseEnrollmentTrack = "Executive Education(2U)"
	row.CourseRunEnrollmentTrack = "Unpaid Executive Education"
	row.ExternalIdentifier = "12345"
	row.ExternalCourseMarketingType = coursemodel.MarketingTypeShortCourse
	row.VariantID = uuid.NewString()
	return row
}

func TestIngestRestrictedVariantNeverSetsEntitlementPrice(t *testing.T) {
	ingestBoth := func(restrictedFirst bool) decimal.Decimal {
		f := newLoaderFixture()

		restricted := execEdIngestRow()
		restricted.VerifiedPrice = "100"
		restricted.RestrictionType = coursemodel.RestrictionB2BEnterprise

		open := execEdIngestRow()
		open.VerifiedPrice = "50"

		if restrictedFirst {
			f.ingest(t, restricted, open)
		} else {
			f.ingest(t, open, restricted)
		}

		// Restricted rows never reach the pricing service.
		for _, call := range f.pricing.calls {
			assert.True(t, call.price.Equal(decimal.NewFromInt(50)))
		}

		course, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+csv_123", true)
		require.NoError(t, err)
		entitlement, err := f.courses.GetEntitlement(context.Background(), course.UUID, true)
		require.NoError(t, err)
		return entitlement.Price
	}

	assert.True(t, ingestBoth(true).Equal(decimal.NewFromInt(50)), "restricted first")
	assert.True(t, ingestBoth(false).Equal(decimal.NewFromInt(50)), "restricted last")
}

func TestIngestRestrictedVariantStaysDraft(t *testing.T) {
	f := newLoaderFixture()
	row := execEdIngestRow()
	row.RestrictionType = coursemodel.RestrictionB2BEnterprise

	stats := f.ingest(t, row)
	assert.Equal(t, 1, stats.SuccessCount)
	require.Len(t, stats.CreatedProducts, 1)
	require.NotNil(t, stats.CreatedProducts[0].RestrictionType)
	assert.Equal(t, coursemodel.RestrictionB2BEnterprise, *stats.CreatedProducts[0].RestrictionType)

	_, official := f.courses.CountCourses()
	assert.Zero(t, official, "restricted variants never propagate to official")
	assert.Empty(t, f.ecommerce.published)
}

func TestIngestArchivesStaleProducts(t *testing.T) {
	f := newLoaderFixture()
	f.opts.ProductType = orgmodel.CourseTypeExecutiveEducation

	// A previously ingested product of the same source and type that this
	// batch no longer carries.
	stale := &coursemodel.Course{
		UUID: uuid.New(), Partner: "edx", Key: "edx+old_1", Title: "Stale Course",
		Type: orgmodel.CourseTypeExecutiveEducation, ProductSource: "ext_source",
		AdditionalMetadata: &coursemodel.AdditionalMetadata{
			ExternalIdentifier: "99999",
			ProductStatus:      coursemodel.ProductStatusPublished,
		},
	}
	for _, draft := range []bool{true, false} {
		stale.Draft = draft
		require.NoError(t, f.courses.SaveCourse(context.Background(), stale))
	}

	// Same identifier, different source: out of the sweep's scope.
	other := &coursemodel.Course{
		UUID: uuid.New(), Partner: "edx", Key: "edx+other_1", Title: "Other Source Course",
		Type: orgmodel.CourseTypeExecutiveEducation, ProductSource: "dbz_source",
		AdditionalMetadata: &coursemodel.AdditionalMetadata{
			ExternalIdentifier: "88888",
			ProductStatus:      coursemodel.ProductStatusPublished,
		},
	}
	for _, draft := range []bool{true, false} {
		other.Draft = draft
		require.NoError(t, f.courses.SaveCourse(context.Background(), other))
	}

	stats := f.ingest(t, execEdIngestRow())
	assert.Equal(t, 1, stats.ArchivedProductsCount)
	assert.Equal(t, []string{"99999"}, stats.ArchivedProducts)

	archived, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+old_1", false)
	require.NoError(t, err)
	assert.Equal(t, coursemodel.ProductStatusArchived, archived.AdditionalMetadata.ProductStatus)

	untouched, err := f.courses.GetCourseByKey(context.Background(), "edx", "edx+other_1", false)
	require.NoError(t, err)
	assert.Equal(t, coursemodel.ProductStatusPublished, untouched.AdditionalMetadata.ProductStatus)
}

func TestIngestArchivalSkipsIngestedProducts(t *testing.T) {
	f := newLoaderFixture()
	f.opts.ProductType = orgmodel.CourseTypeExecutiveEducation

	row := execEdIngestRow()
	first := f.ingest(t, row)
	assert.Zero(t, first.ArchivedProductsCount)

	// Re-ingesting the same identifier keeps the product live.
	second := f.ingest(t, execEdIngestRow())
	assert.Zero(t, second.ArchivedProductsCount)
}
