package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	coursemodel "catalog-backend/internal/domains/course/model"
	courserepo "catalog-backend/internal/domains/course/repository"
	orgmodel "catalog-backend/internal/domains/organization/model"
	orgrepo "catalog-backend/internal/domains/organization/repository"
	"catalog-backend/internal/infrastructure/email"
	"catalog-backend/internal/shared/utils"

	"catalog-backend/internal/domains/ingestion/client"
	"catalog-backend/internal/domains/ingestion/model"
)

// LoaderOptions configure one ingestion run.
type LoaderOptions struct {
	Partner string
	// ProductType is the course type slug the batch belongs to; together
	// with ProductSource it scopes the archival sweep.
	ProductType   string
	ProductSource string
	// ExternalSource is the source slug that requires full exec-ed
	// marketing collateral during validation.
	ExternalSource string
	// VariantIDEditable switches run matching to variant ids.
	VariantIDEditable bool
	// SubdirectorySlugs derives executive-education/{org}-{title} slugs.
	SubdirectorySlugs bool
	// Actor is recorded as the acting user on studio pushes.
	Actor string
}

// CSVLoader runs one ingestion batch: resolve, validate, persist and apply
// side effects row by row, then sweep stale products. A row's failure never
// aborts the batch; only unusable setup (unknown source, unreadable input)
// does.
type CSVLoader struct {
	opts      LoaderOptions
	courses   courserepo.CourseRepository
	orgs      orgrepo.OrganizationRepository
	studio    client.StudioClient
	ecommerce client.EcommerceClient
	pricing   client.PricingClient
	images    ImageService
	emails    email.EmailService
	archiver  *Archiver
}

func NewCSVLoader(
	opts LoaderOptions,
	courses courserepo.CourseRepository,
	orgs orgrepo.OrganizationRepository,
	studio client.StudioClient,
	ecommerce client.EcommerceClient,
	pricing client.PricingClient,
	images ImageService,
	emails email.EmailService,
) *CSVLoader {
	return &CSVLoader{
		opts:      opts,
		courses:   courses,
		orgs:      orgs,
		studio:    studio,
		ecommerce: ecommerce,
		pricing:   pricing,
		images:    images,
		emails:    emails,
		archiver:  NewArchiver(courses),
	}
}

// Ingest processes the batch and returns the run report.
func (l *CSVLoader) Ingest(ctx context.Context, rows []*model.CourseRow) (*model.IngestionStats, error) {
	log.Info().Msg("Initiating CSV data loader flow.")

	if _, err := l.orgs.GetSourceBySlug(ctx, l.opts.ProductSource); err != nil {
		return nil, fmt.Errorf("unknown product source %q: %w", l.opts.ProductSource, err)
	}

	stats := model.NewIngestionStats()
	ingested := make(map[string]bool)

	for _, row := range rows {
		stats.TotalProductsCount++
		l.processRow(ctx, row, stats, ingested)
	}

	if l.opts.ProductType != "" {
		archived, err := l.archiver.Archive(ctx, l.opts.ProductSource, l.opts.ProductType, ingested)
		if err != nil {
			log.Error().Err(err).Msg("Archival sweep failed")
		}
		stats.RecordArchived(archived)
	}

	log.Info().Msg("CSV loader ingest pipeline has completed.")
	return stats, nil
}

func (l *CSVLoader) fail(stats *model.IngestionStats, err model.IngestionError) {
	log.Error().Msg(err.Error())
	stats.RecordFailure(err)
}

func (l *CSVLoader) processRow(ctx context.Context, row *model.CourseRow, stats *model.IngestionStats, ingested map[string]bool) {
	org, err := l.orgs.GetOrganizationByKey(ctx, l.opts.Partner, row.Organization)
	if err != nil {
		l.fail(stats, model.NewError(model.MissingOrganization, row.Organization, row.Title))
		return
	}

	courseType, err := l.orgs.GetCourseTypeByName(ctx, row.CourseEnrollmentTrack)
	if err != nil {
		l.fail(stats, model.NewError(model.MissingCourseType, row.CourseEnrollmentTrack, row.Title))
		return
	}

	runType, err := l.orgs.GetCourseRunTypeByName(ctx, row.CourseRunEnrollmentTrack)
	if err != nil {
		l.fail(stats, model.NewError(model.MissingCourseRunType, row.CourseRunEnrollmentTrack, row.Title))
		return
	}

	if verr := ValidateRequiredData(row, ValidationContext{
		CourseTypeSlug: courseType.Slug,
		MarketingType:  row.ExternalCourseMarketingType,
		ProductSource:  l.opts.ProductSource,
		ExternalSource: l.opts.ExternalSource,
	}); verr != nil {
		l.fail(stats, *verr)
		return
	}

	courseKey := row.CourseKey()
	draft, err := l.courses.GetCourseByKey(ctx, l.opts.Partner, courseKey, true)
	isNew := errors.Is(err, coursemodel.ErrCourseNotFound)
	if err != nil && !isNew {
		l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
		return
	}

	fields, err := parseRowFields(row)
	if err != nil {
		code := model.CourseUpdateError
		if isNew {
			code = model.CourseCreateError
		}
		l.fail(stats, model.NewError(code, row.Title, err.Error()))
		return
	}

	if isNew {
		l.createCourse(ctx, row, fields, org, courseType, runType, stats, ingested)
	} else {
		l.updateCourse(ctx, draft, row, fields, org, courseType, runType, stats, ingested)
	}
}

func (l *CSVLoader) createCourse(
	ctx context.Context,
	row *model.CourseRow,
	fields *rowFields,
	org *orgmodel.Organization,
	courseType *orgmodel.CourseType,
	runType *orgmodel.CourseRunType,
	stats *model.IngestionStats,
	ingested map[string]bool,
) {
	courseKey := row.CourseKey()
	log.Info().Msgf("Course key %s could not be found in database, creating the course.", courseKey)

	now := time.Now().UTC()
	course := &coursemodel.Course{
		UUID:          uuid.New(),
		Partner:       l.opts.Partner,
		Key:           courseKey,
		Draft:         true,
		ProductSource: l.opts.ProductSource,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyCourseFields(course, row, org, courseType)
	course.AdditionalMetadata = buildMetadata(row, fields, courseType)
	course.ActiveURLSlug = l.resolveSlug(ctx, row, org, courseType)

	if err := l.courses.SaveCourse(ctx, course); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	run, err := l.buildNewRun(ctx, course, row, fields, now)
	if err != nil {
		l.fail(stats, model.NewError(model.CourseRunUpdateError, row.Title, err.Error()))
		return
	}
	if fields.start != nil && fields.start.Before(now) {
		run.Status = coursemodel.StatusPublished
	}

	if err := l.courses.SaveRun(ctx, run); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	seat := l.buildSeat(run, fields, courseType, runType, now)
	if err := l.courses.SaveSeat(ctx, seat); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	entitlement := &coursemodel.CourseEntitlement{
		UUID:       uuid.New(),
		CourseUUID: course.UUID,
		Mode:       l.entitlementMode(courseType),
		Price:      fields.price,
		Currency:   "USD",
		Draft:      true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := l.courses.SaveEntitlement(ctx, entitlement); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	// Catalog rows are committed; everything from here on is a side effect.
	if err := l.studio.CreateCourseRun(ctx, run, course.Title, l.opts.Actor); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	l.attachImages(ctx, course, run, row, stats)
	if err := l.courses.SaveCourse(ctx, course); err != nil {
		l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
		return
	}

	if run.Status == coursemodel.StatusPublished && fields.restriction == nil {
		log.Info().Msgf("Draft flag is set to False for the course %s", course.Title)
		if err := l.propagateOfficial(ctx, course, run, seat, entitlement); err != nil {
			l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
			return
		}
		l.publishToEcommerce(ctx, course)
	} else {
		log.Info().Msgf("Draft flag is set to True for the course %s", course.Title)
		l.requestLegalReview(ctx, course)
	}

	l.updateEntitlementPrice(ctx, course, fields, courseType, stats, row.Title)

	if row.ExternalIdentifier != "" {
		ingested[row.ExternalIdentifier] = true
	}
	stats.RecordCreated(l.productRecord(course, run, true))
}

func (l *CSVLoader) updateCourse(
	ctx context.Context,
	course *coursemodel.Course,
	row *model.CourseRow,
	fields *rowFields,
	org *orgmodel.Organization,
	courseType *orgmodel.CourseType,
	runType *orgmodel.CourseRunType,
	stats *model.IngestionStats,
	ingested map[string]bool,
) {
	log.Info().Msgf("Course %s is located in the database.", course.Key)

	applyCourseFields(course, row, org, courseType)
	if metadata := buildMetadata(row, fields, courseType); metadata != nil {
		course.AdditionalMetadata = metadata
	}
	l.applySlugChange(ctx, course, row)

	if err := l.courses.SaveCourse(ctx, course); err != nil {
		l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
		return
	}

	runs, err := l.courses.ListRunsForCourse(ctx, course.UUID, true)
	if err != nil {
		l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
		return
	}

	now := time.Now().UTC()
	run := matchRun(runs, fields, l.opts.VariantIDEditable)
	rerun := run == nil
	if rerun {
		run, err = l.buildRerun(ctx, course, runs, fields, now)
		if err != nil {
			l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
			return
		}
	}

	if err := applyRunFields(run, row, fields); err != nil {
		l.fail(stats, model.NewError(model.CourseRunUpdateError, row.Title, err.Error()))
		return
	}

	// Ingestion only ever moves a run toward published.
	if !fields.future && (run.Status == coursemodel.StatusUnpublished || run.Status.InReview()) {
		run.Status = coursemodel.StatusPublished
	}
	run.UpdatedAt = now

	if err := l.courses.SaveRun(ctx, run); err != nil {
		l.fail(stats, model.NewError(model.CourseRunUpdateError, row.Title, err.Error()))
		return
	}

	seat, err := l.courses.GetSeatForRun(ctx, run.UUID, true)
	if errors.Is(err, coursemodel.ErrSeatNotFound) {
		seat = l.buildSeat(run, fields, courseType, runType, now)
		err = nil
	}
	if err != nil {
		l.fail(stats, model.NewError(model.CourseRunUpdateError, row.Title, err.Error()))
		return
	}
	seat.Price = fields.price
	seat.RestrictionType = fields.restriction
	if err := l.courses.SaveSeat(ctx, seat); err != nil {
		l.fail(stats, model.NewError(model.CourseRunUpdateError, row.Title, err.Error()))
		return
	}

	entitlement := l.refreshEntitlement(ctx, course, fields, courseType, now)

	if rerun {
		if err := l.studio.CreateCourseRun(ctx, run, course.Title, l.opts.Actor); err != nil {
			l.fail(stats, model.NewError(model.CourseCreateError, row.Title, err.Error()))
			return
		}
	} else {
		if err := l.studio.UpdateCourseRun(ctx, run, course.Title, l.opts.Actor); err != nil {
			l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
			return
		}
	}

	l.attachImages(ctx, course, run, row, stats)
	if err := l.courses.SaveCourse(ctx, course); err != nil {
		l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
		return
	}

	if (run.Status == coursemodel.StatusPublished || run.Status.InReview()) && fields.restriction == nil {
		log.Info().Msgf("Draft flag is set to False for the course %s", course.Title)
		if err := l.propagateOfficial(ctx, course, run, seat, entitlement); err != nil {
			l.fail(stats, model.NewError(model.CourseUpdateError, row.Title, err.Error()))
			return
		}
		l.publishToEcommerce(ctx, course)
	} else {
		log.Info().Msgf("Draft flag is set to True for the course %s", course.Title)
	}

	l.updateEntitlementPrice(ctx, course, fields, courseType, stats, row.Title)

	if row.ExternalIdentifier != "" {
		ingested[row.ExternalIdentifier] = true
	}
	if rerun {
		stats.RecordCreated(l.productRecord(course, run, true))
	} else {
		stats.RecordUpdated(l.productRecord(course, run, false))
	}
}

// resolveSlug picks the course's url slug: an explicit row slug, the exec-ed
// subdirectory format, or one derived from the title — always deconflicted
// per partner with a numeric suffix.
func (l *CSVLoader) resolveSlug(ctx context.Context, row *model.CourseRow, org *orgmodel.Organization, courseType *orgmodel.CourseType) string {
	var base string
	switch {
	case row.Slug != "":
		base = utils.GenerateSlug(row.Slug)
	case l.opts.SubdirectorySlugs && courseType.IsExecEd():
		base = utils.SubdirectorySlug(org.Key, row.Title)
	default:
		base = utils.GenerateSlug(row.Title)
	}

	return utils.NextAvailableSlug(base, func(candidate string) bool {
		inUse, err := l.courses.SlugInUse(ctx, l.opts.Partner, candidate)
		if err != nil {
			log.Error().Err(err).Str("slug", candidate).Msg("slug lookup failed")
			return false
		}
		return inUse
	})
}

// applySlugChange honors an explicit slug on an existing course, retiring
// the old slug into the history so it keeps redirecting.
func (l *CSVLoader) applySlugChange(ctx context.Context, course *coursemodel.Course, row *model.CourseRow) {
	if row.Slug == "" {
		return
	}
	slug := utils.GenerateSlug(row.Slug)
	if slug == course.ActiveURLSlug {
		return
	}
	inUse, err := l.courses.SlugInUse(ctx, l.opts.Partner, slug)
	if err != nil || inUse {
		return
	}
	course.URLSlugHistory = append(course.URLSlugHistory, course.ActiveURLSlug)
	course.ActiveURLSlug = slug
}

func (l *CSVLoader) buildNewRun(ctx context.Context, course *coursemodel.Course, row *model.CourseRow, fields *rowFields, now time.Time) (*coursemodel.CourseRun, error) {
	runValues, err := l.courses.ListRunValues(ctx, course.Key)
	if err != nil {
		return nil, err
	}
	if fields.start == nil {
		return nil, fmt.Errorf("cannot derive a run key without a start date")
	}

	runValue := utils.NextAvailableRun(utils.RunSuffixForStart(*fields.start), runValues)
	run := &coursemodel.CourseRun{
		UUID:       uuid.New(),
		CourseUUID: course.UUID,
		Key:        utils.CourseRunKey(course.Key, runValue),
		Draft:      true,
		Status:     coursemodel.StatusUnpublished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := applyRunFields(run, row, fields); err != nil {
		return nil, err
	}
	return run, nil
}

// buildRerun provisions a new run for an existing course through the studio
// rerun endpoint, seeded from the most recent run.
func (l *CSVLoader) buildRerun(ctx context.Context, course *coursemodel.Course, runs []*coursemodel.CourseRun, fields *rowFields, now time.Time) (*coursemodel.CourseRun, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("course %s has no runs to rerun from", course.Key)
	}
	if fields.start == nil {
		return nil, fmt.Errorf("cannot derive a run key without a start date")
	}

	latest := runs[len(runs)-1]
	runValues, err := l.courses.ListRunValues(ctx, course.Key)
	if err != nil {
		return nil, err
	}
	runValue := utils.NextAvailableRun(utils.RunSuffixForStart(*fields.start), runValues)
	newKey := utils.CourseRunKey(course.Key, runValue)

	if err := l.studio.RerunCourseRun(ctx, latest.Key, newKey, l.opts.Actor); err != nil {
		return nil, err
	}

	rerun := *latest
	rerun.UUID = uuid.New()
	rerun.Key = newKey
	rerun.Status = coursemodel.StatusUnpublished
	rerun.Draft = true
	rerun.CreatedAt = now
	rerun.UpdatedAt = now
	return &rerun, nil
}

func (l *CSVLoader) buildSeat(run *coursemodel.CourseRun, fields *rowFields, courseType *orgmodel.CourseType, runType *orgmodel.CourseRunType, now time.Time) *coursemodel.Seat {
	seatType := runType.SeatType
	if seatType == "" {
		seatType = l.entitlementMode(courseType)
	}
	return &coursemodel.Seat{
		UUID:            uuid.New(),
		CourseRunUUID:   run.UUID,
		Type:            seatType,
		Price:           fields.price,
		Currency:        "USD",
		RestrictionType: fields.restriction,
		Draft:           true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (l *CSVLoader) entitlementMode(courseType *orgmodel.CourseType) string {
	if courseType.EntitlementMode != "" {
		return courseType.EntitlementMode
	}
	switch {
	case courseType.IsExecEd():
		return coursemodel.ModePaidExecutiveEd
	case courseType.IsBootcamp():
		return coursemodel.ModePaidBootcamp
	default:
		return coursemodel.ModeVerified
	}
}

// refreshEntitlement updates the course-level offer. Restricted variants
// never write the shared entitlement price; only a missing entitlement is
// seeded from them so the non-restricted row can overwrite it later.
func (l *CSVLoader) refreshEntitlement(ctx context.Context, course *coursemodel.Course, fields *rowFields, courseType *orgmodel.CourseType, now time.Time) *coursemodel.CourseEntitlement {
	entitlement, err := l.courses.GetEntitlement(ctx, course.UUID, true)
	if errors.Is(err, coursemodel.ErrEntitlementNotFound) {
		entitlement = &coursemodel.CourseEntitlement{
			UUID:       uuid.New(),
			CourseUUID: course.UUID,
			Mode:       l.entitlementMode(courseType),
			Price:      fields.price,
			Currency:   "USD",
			Draft:      true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	} else if err != nil {
		log.Error().Err(err).Str("course", course.Key).Msg("entitlement lookup failed")
		return nil
	}

	if fields.restriction == nil {
		entitlement.Price = fields.price
	}
	entitlement.UpdatedAt = now
	if err := l.courses.SaveEntitlement(ctx, entitlement); err != nil {
		log.Error().Err(err).Str("course", course.Key).Msg("entitlement save failed")
	}
	return entitlement
}

func (l *CSVLoader) attachImages(ctx context.Context, course *coursemodel.Course, run *coursemodel.CourseRun, row *model.CourseRow, stats *model.IngestionStats) {
	image, err := l.images.AttachCourseImage(ctx, course, row.Image)
	if err != nil {
		ierr := model.NewError(model.ImageDownloadFailure, row.Title)
		log.Error().Err(err).Msg(ierr.Error())
		stats.RecordError(ierr)
	} else if err := l.studio.PushCourseRunImage(ctx, run.Key, image); err != nil {
		log.Warn().Err(err).Str("run", run.Key).Msg("failed to push card image to studio")
	}

	if row.OrganizationLogoOverride != "" {
		if err := l.images.AttachLogoOverride(ctx, course, row.OrganizationLogoOverride); err != nil {
			ierr := model.NewError(model.LogoImageDownloadFailure, row.Title)
			log.Error().Err(err).Msg(ierr.Error())
			stats.RecordError(ierr)
		}
	}
}

// propagateOfficial copies the draft rows to the official tier. Shared
// UUIDs, draft=false, written as one snapshot.
func (l *CSVLoader) propagateOfficial(ctx context.Context, course *coursemodel.Course, run *coursemodel.CourseRun, seat *coursemodel.Seat, entitlement *coursemodel.CourseEntitlement) error {
	official := *course
	official.Draft = false
	official.Subjects = append([]string(nil), course.Subjects...)
	official.Organizations = append([]string(nil), course.Organizations...)
	official.URLSlugHistory = append([]string(nil), course.URLSlugHistory...)
	official.AdditionalMetadata = course.AdditionalMetadata.Clone()

	officialRun := *run
	officialRun.Draft = false
	officialRun.TranscriptLanguages = append([]string(nil), run.TranscriptLanguages...)
	officialRun.Staff = append([]string(nil), run.Staff...)

	var officialSeat *coursemodel.Seat
	if seat != nil {
		s := *seat
		s.Draft = false
		officialSeat = &s
	}
	var officialEntitlement *coursemodel.CourseEntitlement
	if entitlement != nil {
		e := *entitlement
		e.Draft = false
		officialEntitlement = &e
	}

	if err := l.courses.SaveOfficialSnapshot(ctx, &official, &officialRun, officialSeat, officialEntitlement); err != nil {
		return fmt.Errorf("failed to publish official tier: %w", err)
	}
	return nil
}

func (l *CSVLoader) publishToEcommerce(ctx context.Context, course *coursemodel.Course) {
	if err := l.ecommerce.PublishCourse(ctx, course.UUID, course.Key); err != nil {
		log.Warn().Err(err).Str("course", course.Key).Msg("e-commerce publication failed")
	}
}

func (l *CSVLoader) requestLegalReview(ctx context.Context, course *coursemodel.Course) {
	if l.emails == nil {
		return
	}
	err := l.emails.SendLegalReviewEmail(ctx, email.LegalReviewData{
		CourseTitle: course.Title,
		CourseKey:   course.Key,
		CourseUUID:  course.UUID.String(),
	})
	if err != nil {
		log.Warn().Err(err).Str("course", course.Key).Msg("legal review notification failed")
	}
}

func (l *CSVLoader) updateEntitlementPrice(ctx context.Context, course *coursemodel.Course, fields *rowFields, courseType *orgmodel.CourseType, stats *model.IngestionStats, title string) {
	if fields.restriction != nil {
		return
	}
	if err := l.pricing.UpdateEntitlementPrice(ctx, course.UUID, l.entitlementMode(courseType), fields.price); err != nil {
		ierr := model.NewError(model.EntitlementPriceUpdateError, title, err.Error())
		log.Error().Msg(ierr.Error())
		stats.RecordError(ierr)
	}
}

func (l *CSVLoader) productRecord(course *coursemodel.Course, run *coursemodel.CourseRun, rerun bool) model.ProductRecord {
	record := model.ProductRecord{
		UUID:            course.UUID.String(),
		URLSlug:         course.ActiveURLSlug,
		Rerun:           &rerun,
		RestrictionType: run.RestrictionType,
		IsFutureVariant: run.IsFutureVariant,
	}
	if course.AdditionalMetadata != nil && course.AdditionalMetadata.ExternalCourseMarketingType != "" {
		record.ExternalCourseMarketingType = &course.AdditionalMetadata.ExternalCourseMarketingType
	}
	if run.VariantID != nil {
		variant := run.VariantID.String()
		record.CourseRunVariantID = &variant
	}
	return record
}
