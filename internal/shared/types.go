package shared

// Task type names for the asynq worker.
const (
	TypeProcessCourseImage  = "course:process_image"
	TypeSendLegalReviewMail = "course:send_legal_review_email"
	TypePartnerAPIIngest    = "ingestion:partner_api_ingest"
)

// LegalReviewPayload is the asynq payload for a legal review notification.
type LegalReviewPayload struct {
	CourseUUID   string `json:"courseUuid"`
	CourseTitle  string `json:"courseTitle"`
	CourseKey    string `json:"courseKey"`
	PublisherURL string `json:"publisherUrl"`
}

// ProcessImagePayload is the asynq payload for deferred image variant
// generation.
type ProcessImagePayload struct {
	CourseUUID string `json:"courseUuid"`
	ObjectKey  string `json:"objectKey"`
}
