// Package domain contains the customer model consumed by the
// reconciliation engine. Customers are created and maintained by the
// subscriber-management flows; the engine only resolves them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is an ISP subscriber. Either Email or Phone must be present
// so an incoming payment can be resolved to exactly one customer.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ISPID     snowflake.ID `gorm:"column:isp_id;not null;index"`
	Name      string       `gorm:"type:text;not null"`
	Email     string       `gorm:"type:text;index"`
	Phone     string       `gorm:"type:text;index"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
