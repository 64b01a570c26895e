package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShopDailyStat is the per-(shop, date) analytics aggregate updated
// fire-and-forget after each sale.
type ShopDailyStat struct {
	ShopID        string          `json:"shopID" db:"shop_id"`
	StatDate      time.Time       `json:"statDate" db:"stat_date"` // date only, truncated to UTC midnight
	Views         int64           `json:"views" db:"views"`
	Orders        int64           `json:"orders" db:"orders"`
	Revenue       decimal.Decimal `json:"revenue" db:"revenue"`
	Profit        decimal.Decimal `json:"profit" db:"profit"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt" db:"last_updated_at"`
}
