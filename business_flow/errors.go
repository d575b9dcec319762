package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/taskserial/repository"
)

// Business flow error constants
var (
	// Input errors
	ErrInvalidFormat        = errors.New("invalid prefix format")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrInvalidCategoryID    = errors.New("invalid category ID")

	// Category errors
	ErrCategoryNotFound   = errors.New("category not found")
	ErrPrefixNotAssigned  = errors.New("category has no prefix assigned")
	ErrPrefixAlreadyTaken = errors.New("prefix already taken")

	// Sequence store errors
	ErrSerializationConflict = repository.ErrSerializationConflict
	ErrStoreUnavailable      = repository.ErrStoreUnavailable
)

// ErrorKind is the closed set of failure classes a serial number operation can report
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidFormat
	KindNotFound
	KindPrefixNotAssigned
	KindPrefixTaken
	KindSerializationConflict
	KindStoreUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidFormat:
		return "INVALID_FORMAT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindPrefixNotAssigned:
		return "PREFIX_NOT_ASSIGNED"
	case KindPrefixTaken:
		return "PREFIX_TAKEN"
	case KindSerializationConflict:
		return "SERIALIZATION_CONFLICT"
	case KindStoreUnavailable:
		return "STORE_UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// KindOf classifies err. Wrapped errors are matched through their chain.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrCategoryNameRequired):
		return KindInvalidFormat
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrInvalidCategoryID):
		// an ID that cannot be parsed names no category
		return KindNotFound
	case errors.Is(err, ErrPrefixNotAssigned):
		return KindPrefixNotAssigned
	case errors.Is(err, ErrPrefixAlreadyTaken):
		return KindPrefixTaken
	case errors.Is(err, ErrSerializationConflict):
		return KindSerializationConflict
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindUnknown
	}
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

func IsCategoryNameRequired(err error) bool {
	return errors.Is(err, ErrCategoryNameRequired)
}

func IsInvalidCategoryID(err error) bool {
	return errors.Is(err, ErrInvalidCategoryID)
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsPrefixNotAssigned(err error) bool {
	return errors.Is(err, ErrPrefixNotAssigned)
}

func IsPrefixAlreadyTaken(err error) bool {
	return errors.Is(err, ErrPrefixAlreadyTaken)
}

func IsSerializationConflict(err error) bool {
	return errors.Is(err, ErrSerializationConflict)
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
