package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category enum constants
const (
	CategoryMedicineSale            = "medicine_sale"
	CategoryMedicinePurchase        = "medicine_purchase"
	CategoryConsultationFee         = "consultation_fee"
	CategorySalesProfitDistribution = "sales_profit_distribution"
	CategoryDistributorPayment      = "distributor_payment"
	CategorySalaryExpense           = "salary_expense"
	CategoryRentExpense             = "rent_expense"
	CategoryUtilityExpense          = "utility_expense"
	CategoryEquipmentPurchase       = "equipment_purchase"
	CategoryMaintenanceExpense      = "maintenance_expense"
	CategoryPatientRefund           = "patient_refund"
	CategoryMiscellaneous           = "miscellaneous"
)

var categories = map[string]bool{
	CategoryMedicineSale:            true,
	CategoryMedicinePurchase:        true,
	CategoryConsultationFee:         true,
	CategorySalesProfitDistribution: true,
	CategoryDistributorPayment:      true,
	CategorySalaryExpense:           true,
	CategoryRentExpense:             true,
	CategoryUtilityExpense:          true,
	CategoryEquipmentPurchase:       true,
	CategoryMaintenanceExpense:      true,
	CategoryPatientRefund:           true,
	CategoryMiscellaneous:           true,
}

// ValidCategory reports whether c is one of the twelve transaction categories
func ValidCategory(c string) bool {
	return categories[c]
}

// Transaction represents a single ledger entry owned by exactly one unit.
// StakeholderID and StakeholderType are set together or not at all.
// Deletion is permanent; there is no soft delete or versioning.
type Transaction struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Category string    `gorm:"type:varchar(50);not null;index" json:"category"`

	StakeholderID   *uuid.UUID   `gorm:"type:uuid;index" json:"stakeholder_id"`
	StakeholderType string       `gorm:"type:varchar(30)" json:"stakeholder_type,omitempty"`
	Stakeholder     *Stakeholder `gorm:"foreignKey:StakeholderID" json:"-"`

	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description string          `gorm:"type:text;not null" json:"description"`
	BillNo      string          `gorm:"type:varchar(100)" json:"bill_no,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	UnitID    uuid.UUID `gorm:"type:uuid;not null;index" json:"unit_id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
