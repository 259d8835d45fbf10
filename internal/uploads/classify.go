package uploads

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"

	"studymate-backend/internal/shared/storage/object"
	"studymate-backend/internal/summarize"
)

// Category groups upload failures by what the user can do about them.
type Category string

const (
	CategoryValidation        Category = "validation"
	CategoryNetwork           Category = "network"
	CategoryStoragePermission Category = "storage_permission"
	CategoryStorageConfig     Category = "storage_config"
	CategoryCanceled          Category = "canceled"
	CategoryUnknown           Category = "unknown"
)

const codeUnknown = "unknown"

const (
	msgNetwork = "Cannot connect to server.\n\nTroubleshooting:\n" +
		"• Make sure the summarization service is running on port 8000\n" +
		"• Android emulators use 10.0.2.2 to reach the host machine\n" +
		"• For a physical device, set SUMMARIZER_BASE_URL to your machine's IP"
	msgPermission    = "Permission denied. Check storage permissions/rules."
	msgCanceled      = "Upload was canceled."
	msgNotConfigured = "Object storage not configured.\n\nSetup Steps:\n" +
		"1. Set OBJECT_STORE to local or s3\n" +
		"2. For s3, set S3_BUCKET and AWS_REGION\n" +
		"3. Make sure the bucket exists and credentials can write to it\n" +
		"4. Try uploading again"
	msgStorageUnknown = "Unknown error occurred. Check object storage configuration."
	msgDefault        = "Failed to upload file"
)

// Failure is a classified upload error carrying a user-facing message.
type Failure struct {
	Category Category
	Message  string
	Code     string
	Err      error
}

func (f *Failure) Error() string {
	code := f.Code
	if code == "" {
		code = codeUnknown
	}
	return f.Message + "\n\nError Code: " + code
}

func (f *Failure) Unwrap() error { return f.Err }

func validationFailure(msg string) *Failure {
	return &Failure{Category: CategoryValidation, Message: msg, Code: "validation"}
}

// Classify maps an upload pipeline error to a Failure. A Failure passes through unchanged.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var objErr *object.Error
	if errors.As(err, &objErr) {
		return classifyStorage(objErr.Code, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
			return classifyStorage(object.CodeUnauthorized, err)
		case "NoSuchBucket":
			return classifyStorage(object.CodeNotConfigured, err)
		}
	}

	var statusErr *summarize.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &Failure{Category: CategoryNetwork, Message: statusErr.Error(), Code: codeUnknown, Err: err}
	case errors.Is(err, context.Canceled):
		return &Failure{Category: CategoryCanceled, Message: msgCanceled, Code: "canceled", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Failure{Category: CategoryNetwork, Message: msgNetwork, Code: codeUnknown, Err: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = msgDefault
	}
	return &Failure{Category: CategoryUnknown, Message: msg, Code: codeUnknown, Err: err}
}

func classifyStorage(code string, err error) *Failure {
	switch code {
	case object.CodeUnauthorized:
		return &Failure{Category: CategoryStoragePermission, Message: msgPermission, Code: "storage/unauthorized", Err: err}
	case object.CodeCanceled:
		return &Failure{Category: CategoryCanceled, Message: msgCanceled, Code: "storage/canceled", Err: err}
	case object.CodeNotConfigured:
		return &Failure{Category: CategoryStorageConfig, Message: msgNotConfigured, Code: "storage/unknown", Err: err}
	default:
		return &Failure{Category: CategoryUnknown, Message: msgStorageUnknown, Code: "storage/unknown", Err: err}
	}
}
