package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

var Statuses = []OrderStatus{StatusPending, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// StatusOrPending trims the input and falls back to Pending for anything
// outside the three known states.
func StatusOrPending(raw string) OrderStatus {
	s := OrderStatus(strings.TrimSpace(raw))
	if s.Valid() {
		return s
	}
	return StatusPending
}

// Money is a price with two decimal places. It is written to JSON as a bare
// number and read back from either a number or a quoted string.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name         string    `gorm:"not null"                           json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"               json:"email"`
	PasswordHash string    `gorm:"column:password;not null"           json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:staff" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"not null;index"              json:"name"`
	Description string          `json:"description"`
	Price       Money     `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Order struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"                            json:"id"`
	CustomerName string      `gorm:"not null"                                            json:"customer_name"`
	ProductID    uint        `gorm:"not null;index"                                      json:"product_id"`
	Product      *Product    `gorm:"constraint:OnDelete:RESTRICT"                        json:"-"`
	Quantity     int         `gorm:"not null;check:chk_orders_quantity,quantity >= 1"    json:"quantity"`
	OrderDate    time.Time   `gorm:"not null;index"                                      json:"order_date"`
	Status       OrderStatus `gorm:"type:varchar(16);not null;default:Pending;check:chk_orders_status,status IN ('Pending','Completed','Cancelled')" json:"status"`
	CreatedBy    uint        `gorm:"not null;index"                                      json:"created_by"`
	Creator      *User       `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"   json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OrderView is an order joined with the name and price of its product.
type OrderView struct {
	ID           uint            `json:"id"`
	CustomerName string          `json:"customer_name"`
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Price        Money           `json:"price"`
	Quantity     int             `json:"quantity"`
	OrderDate    time.Time       `json:"order_date"`
	Status       OrderStatus     `json:"status"`
	CreatedBy    uint            `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"not null"                 json:"email"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
