package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrItemNotInCart     = errors.New("item not in cart")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrCategoryNotEmpty  = errors.New("category still owns products")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

// NotFoundError is returned when an entity id cannot be resolved.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Entity, e.ID)
}

// Is allows errors.Is checks against any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
