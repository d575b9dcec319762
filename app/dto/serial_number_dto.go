package dto

// GenerateSerialNumberRequest mints a serial number for a prefix or for a category's prefix.
// Exactly one of Prefix and CategoryID must be set.
type GenerateSerialNumberRequest struct {
	Prefix     *string `json:"prefix,omitempty" validate:"omitempty,serial_prefix"`
	CategoryID *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
}

// GenerateSerialNumberResponse carries a freshly allocated serial number
type GenerateSerialNumberResponse struct {
	SerialNumber string `json:"serial_number"`
	Prefix       string `json:"prefix"`
	Number       uint64 `json:"number"`
}

// ValidateSerialNumberRequest asks whether a string is a well-formed serial number
type ValidateSerialNumberRequest struct {
	SerialNumber string `json:"serial_number" validate:"required,max=64"`
}

// ValidateSerialNumberResponse reports the validation outcome and the parsed parts when valid
type ValidateSerialNumberResponse struct {
	SerialNumber string  `json:"serial_number"`
	Valid        bool    `json:"valid"`
	Prefix       *string `json:"prefix,omitempty"`
	Number       *uint64 `json:"number,omitempty"`
}

// PrefixUniquenessResponse reports whether a candidate prefix is still free
type PrefixUniquenessResponse struct {
	Prefix   string `json:"prefix"`
	IsUnique bool   `json:"is_unique"`
}

// PrefixSuggestionResponse is a suggested prefix for a category
type PrefixSuggestionResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Prefix       string `json:"prefix"`
	IsUnique     bool   `json:"is_unique"`
}
