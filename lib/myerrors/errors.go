package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type errorKind int

const (
	kindOther errorKind = iota
	kindConfiguration
	kindValidation
	kindTransport
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type httpError struct {
	httpCode  int
	kind      errorKind
	retryable bool
	exhausted bool
	err       error
}

func (e *httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e *httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func (e *httpError) Unwrap() error {
	return e.err
}

func newError(httpCode int, kind errorKind, retryable bool, err error) *httpError {
	return &httpError{
		httpCode:  httpCode,
		kind:      kind,
		retryable: retryable,
		err:       err,
	}
}

func NewInvalidInputError(err error) *httpError {
	return newError(http.StatusBadRequest, kindValidation, false, err)
}

func NewInvalidInputErrorf(format string, args ...interface{}) *httpError {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

func NewValidationError(err error) *httpError {
	return newError(http.StatusBadRequest, kindValidation, false, err)
}

func NewConfigurationError(err error) *httpError {
	return newError(http.StatusInternalServerError, kindConfiguration, false, err)
}

func NewTransportError(err error) *httpError {
	return newError(http.StatusBadGateway, kindTransport, true, err)
}

func NewUnsupportedMediaTypeError(err error) *httpError {
	return newError(http.StatusUnsupportedMediaType, kindValidation, false, err)
}

func NewNotFoundError(err error) *httpError {
	return newError(http.StatusNotFound, kindOther, false, err)
}

func NewAuthenticationError(err error) *httpError {
	return newError(http.StatusForbidden, kindOther, false, err)
}

func NewInternalError(err error) *httpError {
	return newError(http.StatusInternalServerError, kindOther, false, err)
}

func NewNotImplementedError(err error) *httpError {
	return newError(http.StatusNotImplemented, kindOther, false, err)
}

func NewUnavailableError(err error) *httpError {
	return newError(http.StatusServiceUnavailable, kindTransport, true, err)
}

// NewRetriesExhaustedError annotates the last error after all attempts
// were used up, preserving its http-status and classification.
func NewRetriesExhaustedError(err error) *httpError {
	annotated := newError(GetHTTPStatus(err), kindOf(err), false, fmt.Errorf("retries exhausted: %s", err))
	annotated.exhausted = true
	return annotated
}

func GetHTTPStatus(err error) int {
	if err != nil {
		var coder httpErrorCoder
		if errors.As(err, &coder) {
			return coder.GetHTTPErrorCode()
		}
	}
	return http.StatusInternalServerError
}

func kindOf(err error) errorKind {
	var myError *httpError
	if errors.As(err, &myError) {
		return myError.kind
	}
	return kindOther
}

// IsRetryable tells whether another attempt can possibly succeed. Errors that
// were not classified at all are assumed to be transient.
func IsRetryable(err error) bool {
	var myError *httpError
	if errors.As(err, &myError) {
		return myError.retryable
	}
	return true
}

func IsConfigurationError(err error) bool {
	return kindOf(err) == kindConfiguration
}

func IsValidationError(err error) bool {
	return kindOf(err) == kindValidation
}

func IsTransportError(err error) bool {
	return kindOf(err) == kindTransport
}

func IsRetriesExhausted(err error) bool {
	var myError *httpError
	if errors.As(err, &myError) {
		return myError.exhausted
	}
	return false
}
