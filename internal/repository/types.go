package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page           int
	PageSize       int
	UserID         string
	Status         string
	PaymentCode    string
	Email          string
	DeliveryStatus string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// CardListFilter 查询卡密列表的过滤条件
type CardListFilter struct {
	Page      int
	PageSize  int
	ProductID uint
	Status    string
}

// CouponListFilter 查询优惠码列表的过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
}

// OrderAccessAuditListFilter 查询订单访问审计的过滤条件
type OrderAccessAuditListFilter struct {
	Page           int
	PageSize       int
	OrderID        uint
	UserID         string
	OnlySuspicious bool
}

// CardStockStat 按商品聚合的卡密库存
type CardStockStat struct {
	ProductID uint  `json:"product_id"`
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Used      int64 `json:"used"`
}
