package service

import (
	"errors"
	"fmt"
)

var (
	ErrStockExceeded   = errors.New("requested quantity out of stock")
	ErrProductNotFound = errors.New("product not in cart")
	ErrFetchFailure    = errors.New("failed to fetch product data")
	ErrPersistFailure  = errors.New("failed to persist cart")
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
	OpFlush  Op = "flush"
)

// CartError is returned by every failed cart operation.
// errors.Is matches both Kind and the underlying cause.
type CartError struct {
	Op        Op
	ProductID int64
	Kind      error
	Err       error
}

func (e *CartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s product %d: %v: %v", e.Op, e.ProductID, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s product %d: %v", e.Op, e.ProductID, e.Kind)
}

func (e *CartError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// userMessage is the text shown to the shopper for a failed operation
func userMessage(op Op, kind error) string {
	switch {
	case errors.Is(kind, ErrStockExceeded):
		return "requested quantity out of stock"
	case op == OpAdd:
		return "error adding product"
	case op == OpRemove:
		return "error removing product"
	default:
		return "error changing product quantity"
	}
}

func outcome(kind error) string {
	switch {
	case kind == nil:
		return "success"
	case errors.Is(kind, ErrStockExceeded):
		return "stock_exceeded"
	case errors.Is(kind, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(kind, ErrFetchFailure):
		return "fetch_failure"
	default:
		return "persist_failure"
	}
}
