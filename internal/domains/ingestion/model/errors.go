package model

import "fmt"

// Ingestion error codes. Every row-level failure is reported (and logged)
// as "[CODE] message"; a batch never aborts on a row error.
const (
	MissingOrganization         = "MISSING_ORGANIZATION"
	MissingCourseType           = "MISSING_COURSE_TYPE"
	MissingCourseRunType        = "MISSING_COURSE_RUN_TYPE"
	MissingRequiredData         = "MISSING_REQUIRED_DATA"
	CourseCreateError           = "COURSE_CREATE_ERROR"
	CourseUpdateError           = "COURSE_UPDATE_ERROR"
	CourseRunUpdateError        = "COURSE_RUN_UPDATE_ERROR"
	ImageDownloadFailure        = "IMAGE_DOWNLOAD_FAILURE"
	LogoImageDownloadFailure    = "LOGO_IMAGE_DOWNLOAD_FAILURE"
	EntitlementPriceUpdateError = "COURSE_ENTITLEMENT_PRICE_UPDATE_ERROR"
)

// Message templates, one per error code.
const (
	MissingOrganizationMessage         = "Unable to locate partner organization with key %s for the course titled %s."
	MissingCourseTypeMessage           = "Unable to find the course enrollment track \"%s\" for the course %s"
	MissingCourseRunTypeMessage        = "Unable to find the course run enrollment track \"%s\" for the course %s"
	MissingRequiredDataMessage         = "Course %s is missing the required data for ingestion. The missing data elements are \"%s\""
	CourseCreateErrorMessage           = "Unable to create course %s in the system. The creation failed with the exception: %s"
	CourseUpdateErrorMessage           = "Unable to update course %s in the system. The update failed with the exception: %s"
	CourseRunUpdateErrorMessage        = "Unable to update course run of the course %s in the system. The update failed with the exception: %s"
	ImageDownloadFailureMessage        = "The course image download failed for the course %s."
	LogoImageDownloadFailureMessage    = "The logo image download failed for the course %s."
	EntitlementPriceUpdateErrorMessage = "Unable to update course entitlement price for the course %s. The update failed with the exception: %s"
)

// IngestionError is one reported row-level failure.
type IngestionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error satisfies the error interface with the logged "[CODE] message" form.
func (e IngestionError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewError formats a row-level failure from the code's message template.
func NewError(code string, args ...interface{}) IngestionError {
	templates := map[string]string{
		MissingOrganization:         MissingOrganizationMessage,
		MissingCourseType:           MissingCourseTypeMessage,
		MissingCourseRunType:        MissingCourseRunTypeMessage,
		MissingRequiredData:         MissingRequiredDataMessage,
		CourseCreateError:           CourseCreateErrorMessage,
		CourseUpdateError:           CourseUpdateErrorMessage,
		CourseRunUpdateError:        CourseRunUpdateErrorMessage,
		ImageDownloadFailure:        ImageDownloadFailureMessage,
		LogoImageDownloadFailure:    LogoImageDownloadFailureMessage,
		EntitlementPriceUpdateError: EntitlementPriceUpdateErrorMessage,
	}
	return IngestionError{Code: code, Message: fmt.Sprintf(templates[code], args...)}
}
