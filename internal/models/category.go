package models

// Category represents the ledger category of a transaction.
type Category string

const (
	CategoryRevenue       Category = "Revenue"
	CategoryCOGS          Category = "COGS"
	CategoryPayroll       Category = "Payroll"
	CategoryRent          Category = "Rent"
	CategorySoftware      Category = "Software"
	CategoryMarketing     Category = "Marketing"
	CategoryTravel        Category = "Travel"
	CategoryUtilities     Category = "Utilities"
	CategoryUncategorized Category = "Uncategorized"
	CategoryOperational   Category = "Operational"
	CategoryFinancial     Category = "Financial"
	CategoryLegal         Category = "Legal"
)

// Categories lists the categories a user may pick when editing, in display order.
var Categories = []Category{
	CategoryRevenue,
	CategoryCOGS,
	CategoryPayroll,
	CategoryRent,
	CategorySoftware,
	CategoryMarketing,
	CategoryTravel,
	CategoryUtilities,
	CategoryUncategorized,
	CategoryOperational,
	CategoryFinancial,
	CategoryLegal,
}

// Known reports whether c is one of the enumerated categories.
// Uploaded data may still carry other values.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// OrUncategorized returns CategoryUncategorized for an empty category.
func (c Category) OrUncategorized() Category {
	if c == "" {
		return CategoryUncategorized
	}
	return c
}
