package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin staff"`
}

type RegisterResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginRequest has no validate tags: any malformed login is just a failed login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProductRequest is bound from JSON, or filled from a multipart form by the
// handler. Nil fields were not supplied.
type ProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *Decimal `json:"price"`
}

type CreateOrderRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	ProductID    FlexInt `json:"product_id"    validate:"gt=0"`
	Quantity     FlexInt `json:"quantity"      validate:"gte=1"`
	OrderDate    string  `json:"order_date"    validate:"required"`
	Status       string  `json:"status"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Completed Cancelled"`
}

type MessageRequest struct {
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required"`
	Message string `json:"message" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// FlexInt accepts 3, "3" and " 3 ". HTML selects post numbers as strings.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = FlexInt(n)
	return nil
}

// Decimal accepts a JSON number or a numeric string.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.Parse(s)
	}
	return d.Parse(string(b))
}

func (d *Decimal) Parse(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	d.Decimal = v
	return nil
}
