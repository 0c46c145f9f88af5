package myerrors

import (
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	myErr := fmt.Errorf("my error")

	testCases := []struct {
		name       string
		in         error
		httpStatus int
		errorText  string
		retryable  bool
	}{
		{
			name:       "No http error",
			in:         myErr,
			httpStatus: 500,
			errorText:  "my error",
			retryable:  true,
		},
		{
			name:       "Invalid input error",
			in:         NewInvalidInputError(myErr),
			httpStatus: 400,
			errorText:  "status: 400, err: my error",
		},
		{
			name:       "Invalid input errorf",
			in:         NewInvalidInputErrorf("%s: %d", myErr.Error(), 123),
			httpStatus: 400,
			errorText:  "status: 400, err: my error: 123",
		},
		{
			name:       "Validation error",
			in:         NewValidationError(myErr),
			httpStatus: 400,
			errorText:  "status: 400, err: my error",
		},
		{
			name:       "Configuration error",
			in:         NewConfigurationError(myErr),
			httpStatus: 500,
			errorText:  "status: 500, err: my error",
		},
		{
			name:       "Transport error",
			in:         NewTransportError(myErr),
			httpStatus: 502,
			errorText:  "status: 502, err: my error",
			retryable:  true,
		},
		{
			name:       "Authentication error",
			in:         NewAuthenticationError(myErr),
			httpStatus: 403,
			errorText:  "status: 403, err: my error",
		},
		{
			name:       "Not found error",
			in:         NewNotFoundError(myErr),
			httpStatus: 404,
			errorText:  "status: 404, err: my error",
		},
		{
			name:       "Internal error",
			in:         NewInternalError(myErr),
			httpStatus: 500,
			errorText:  "status: 500, err: my error",
		},
		{
			name:       "Not available error",
			in:         NewUnavailableError(myErr),
			httpStatus: 503,
			errorText:  "status: 503, err: my error",
			retryable:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpStatus := GetHTTPStatus(tc.in)
			if httpStatus != tc.httpStatus {
				t.Errorf("HttpStatus: got %v, want %v", httpStatus, tc.httpStatus)
			}
			if tc.errorText != tc.in.Error() {
				t.Errorf("%s: ErrorText: got %v, want %v", tc.name, tc.in.Error(), tc.errorText)
			}
			if tc.retryable != IsRetryable(tc.in) {
				t.Errorf("%s: Retryable: got %v, want %v", tc.name, IsRetryable(tc.in), tc.retryable)
			}
		})
	}
}

func TestRetriesExhausted(t *testing.T) {
	err := NewRetriesExhaustedError(NewTransportError(fmt.Errorf("connection reset")))

	if !IsRetriesExhausted(err) {
		t.Errorf("expected retries-exhausted annotation")
	}
	if IsRetryable(err) {
		t.Errorf("exhausted error must not be retryable")
	}
	if !IsTransportError(err) {
		t.Errorf("classification of wrapped error must be preserved")
	}
	if GetHTTPStatus(err) != 502 {
		t.Errorf("http status of wrapped error must be preserved, got %d", GetHTTPStatus(err))
	}
}
