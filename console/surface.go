package console

import appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"

// surfaceText maps a client error to the banner text shown to the operator.
// Server rejections carry their message verbatim; infrastructure failures
// get a generic line.
func surfaceText(err error) string {
	appErr := appErrors.FromError(err)
	switch {
	case appErr.Is(appErrors.ErrTransport):
		return "Network error. Please try again."
	case appErr.Is(appErrors.ErrDecode):
		return "Unexpected response from the accounts service."
	case appErr.Message != "":
		return appErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}
