package core

import "net/http"

// Exchange error codes with special handling. The full list lives in the
// exchange's "Error Codes" documentation.
const (
	CodeUnknown          = -1000
	CodeDisconnected     = -1001
	CodeTooManyRequests  = -1003
	CodeTimeout          = -1007
	CodeTooManyOrders    = -1015
	CodeInvalidTimestamp = -1021
	CodeInvalidSignature = -1022
	CodeNewOrderRejected = -2010
	CodeCancelRejected   = -2011
	CodeNoSuchOrder      = -2013
	CodeBadAPIKeyFormat  = -2014
	CodeRejectedAPIKey   = -2015
)

// ClassifyCode maps an exchange error code and HTTP status to an ErrorType.
// The code wins when it is recognized; the status is the fallback.
func ClassifyCode(code, statusCode int) ErrorType {
	switch code {
	case CodeTooManyRequests, CodeTooManyOrders:
		return ErrorTypeRateLimit
	case CodeInvalidTimestamp, CodeInvalidSignature, CodeBadAPIKeyFormat, CodeRejectedAPIKey:
		return ErrorTypeAuthentication
	case CodeNewOrderRejected:
		return ErrorTypeInsufficientFunds
	case CodeNoSuchOrder:
		return ErrorTypeNotFound
	case CodeCancelRejected:
		return ErrorTypeInvalidOrder
	case CodeUnknown, CodeDisconnected, CodeTimeout:
		return ErrorTypeServerError
	}

	switch {
	case code <= -1100 && code > -1200:
		return ErrorTypeBadRequest
	case code <= -2000 && code > -3000:
		return ErrorTypeInvalidOrder
	}

	switch {
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusTeapot:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode >= http.StatusInternalServerError:
		return ErrorTypeServerError
	case statusCode >= http.StatusBadRequest:
		return ErrorTypeBadRequest
	}
	return ErrorTypeUnknown
}
