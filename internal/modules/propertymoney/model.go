// README: PropertyMoney entity: a monetary amount attached to a property.
package propertymoney

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EntityName is the name used in alert headers and problem bodies.
const EntityName = "propertyMoney"

// PropertyMoney fields are all optional; those present must be well formed.
// Every field is always serialized: unset pointers as null, unset strings as "".
type PropertyMoney struct {
	ID          *int64           `json:"id"`
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,money"`
	Currency    string           `json:"currency" binding:"omitempty,currency"`
	Description string           `json:"description" binding:"max=255"`
	PropertyID  *int64           `json:"propertyId" binding:"omitempty,gt=0"`
}

func (p PropertyMoney) String() string {
	id := "null"
	if p.ID != nil {
		id = fmt.Sprint(*p.ID)
	}
	amount := "null"
	if p.Amount != nil {
		amount = p.Amount.String()
	}
	return fmt.Sprintf("PropertyMoney{id=%s, amount=%s, currency=%q, description=%q}", id, amount, p.Currency, p.Description)
}

// sortColumns maps sortable JSON properties to their columns.
var sortColumns = map[string]string{
	"id":          "id",
	"amount":      "amount",
	"currency":    "currency",
	"description": "description",
	"propertyId":  "property_id",
}

// IsSortable reports whether the list endpoint can order by the given JSON property.
func IsSortable(property string) bool {
	_, ok := sortColumns[property]
	return ok
}
