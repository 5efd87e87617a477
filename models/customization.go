package models

// Size is the cup size of a drink
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// SugarLevel is the sweetness selected for a drink
type SugarLevel string

const (
	SugarNone   SugarLevel = "no-sugar"
	SugarHalf   SugarLevel = "half-sugar"
	SugarNormal SugarLevel = "normal"
	SugarExtra  SugarLevel = "extra-sugar"
)

// IceLevel is the amount of ice selected for a drink
type IceLevel string

const (
	IceLess    IceLevel = "less"
	IceRegular IceLevel = "regular"
	IceExtra   IceLevel = "extra"
)

// Valid reports whether s is one of the known sizes
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Valid reports whether l is one of the known sugar levels
func (l SugarLevel) Valid() bool {
	switch l {
	case SugarNone, SugarHalf, SugarNormal, SugarExtra:
		return true
	}
	return false
}

// Valid reports whether l is one of the known ice levels
func (l IceLevel) Valid() bool {
	switch l {
	case IceLess, IceRegular, IceExtra:
		return true
	}
	return false
}

// Customization is the set of options applied to a menu item in a cart or
// order line. It is never stored on its own.
type Customization struct {
	Size       Size       `json:"size"`
	SugarLevel SugarLevel `json:"sugarLevel"`
	IceLevel   IceLevel   `json:"iceLevel"`
	Toppings   []string   `json:"toppings"`
}
