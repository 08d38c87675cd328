package store

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance shared by all stores; struct validation is stateless.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ProductInput is the payload for AddProduct and UpdateProduct.
type ProductInput struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Category string  `json:"category"`
}

// normalized returns the input with surrounding whitespace stripped from the
// name, so "   " fails the required check the same way "" does.
func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// validateProduct collects every violated field of the input. Quantity
// integrality is enforced by the int type; callers decoding JSON get a type
// error for fractional quantities before reaching here.
func validateProduct(in ProductInput) *ValidationError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []FieldError{{Field: "input", Message: err.Error()}}}
	}

	verr := &ValidationError{}
	for _, v := range violations {
		switch v.StructField() {
		case "Name":
			verr.Fields = append(verr.Fields, FieldError{Field: "name", Message: "product name is required"})
		case "Price":
			verr.Fields = append(verr.Fields, FieldError{Field: "price", Message: "price must be 0 or greater"})
		case "Quantity":
			verr.Fields = append(verr.Fields, FieldError{Field: "quantity", Message: "quantity must be 0 or greater"})
		}
	}
	return verr
}

// validateCartQuantity checks the one rule shared by every cart mutation.
func validateCartQuantity(quantity int) *ValidationError {
	if quantity < 1 {
		return &ValidationError{Fields: []FieldError{{Field: "quantity", Message: "quantity must be at least 1"}}}
	}
	return nil
}
