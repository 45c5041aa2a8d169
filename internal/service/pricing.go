package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItem 购物车行（客户端声明的单价仅用于交叉校验）
type CartItem struct {
	ProductID    uint            `json:"productId"`
	ProductOptID uint            `json:"productOptId"`
	Unit         int             `json:"unit"`
	Price        decimal.Decimal `json:"price"`
}

// OrderTotals 客户端声明的金额
type OrderTotals struct {
	TotalAmt      decimal.Decimal
	DeliveryCost  decimal.Decimal
	DiscountAmt   decimal.Decimal
	GrandTotalAmt decimal.Decimal
}

// 购物车整数字段上限，超出视为类型错误而非截断
const (
	maxCartID   = math.MaxUint32
	maxCartUnit = 9999
)

// DecodeCart 解析购物车；字段必须是 JSON 数字且为正数，ID 与数量必须为整数
func DecodeCart(raw json.RawMessage) ([]CartItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMissing
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var rows []map[string]interface{}
	if err := decoder.Decode(&rows); err != nil {
		return nil, ErrCartMissing
	}
	if len(rows) == 0 {
		return nil, ErrMissing
	}

	items := make([]CartItem, 0, len(rows))
	for _, row := range rows {
		price, ok := positiveNumber(row["price"])
		if !ok {
			return nil, ErrCartMissing
		}
		productID, ok := positiveInteger(row["productId"], maxCartID)
		if !ok {
			return nil, ErrCartMissing
		}
		optID, ok := positiveInteger(row["productOptId"], maxCartID)
		if !ok {
			return nil, ErrCartMissing
		}
		unit, ok := positiveInteger(row["unit"], maxCartUnit)
		if !ok {
			return nil, ErrCartMissing
		}
		items = append(items, CartItem{
			ProductID:    uint(productID),
			ProductOptID: uint(optID),
			Unit:         int(unit),
			Price:        price,
		})
	}
	return items, nil
}

func positiveNumber(value interface{}) (decimal.Decimal, bool) {
	number, ok := value.(json.Number)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(number.String())
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func positiveInteger(value interface{}, limit int64) (int64, bool) {
	d, ok := positiveNumber(value)
	if !ok || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(limit)) {
		return 0, false
	}
	return d.IntPart(), true
}

// ParseAmount 解析金额字段，兼容字符串与数字；空值返回 false
func ParseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return decimal.Zero, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(number.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// round2 四舍五入（远离零）到 2 位小数
func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// PricingValidator 按规格单价重新计算金额
type PricingValidator struct {
	productRepo repository.ProductRepository
}

// NewPricingValidator 创建金额校验器
func NewPricingValidator(productRepo repository.ProductRepository) *PricingValidator {
	return &PricingValidator{productRepo: productRepo}
}

// Validate 校验购物车与声明金额，返回以规格单价快照的订单明细
// 运费与折扣不能为负，应付金额必须为正
func (v *PricingValidator) Validate(cart []CartItem, totals OrderTotals) ([]models.OrderDetail, error) {
	if totals.DeliveryCost.IsNegative() || totals.DiscountAmt.IsNegative() {
		return nil, ErrInvalidAmount
	}
	priced, err := v.priceCart(cart)
	if err != nil {
		return nil, err
	}
	if !priced.declared.Equal(priced.expected) || !totals.TotalAmt.Equal(priced.expected) {
		return nil, ErrTotalAmtMismatch
	}
	if !round2(totals.GrandTotalAmt).IsPositive() {
		return nil, ErrInvalidAmount
	}
	expectedGrand := round2(totals.TotalAmt.Add(totals.DeliveryCost).Sub(totals.DiscountAmt))
	if !expectedGrand.Equal(round2(totals.GrandTotalAmt)) {
		return nil, ErrGrandTotalMismatch
	}
	return priced.details, nil
}

// AdminDetails 后台改购物车：规格必须存在，单价沿用提交值并保留 2 位小数
func (v *PricingValidator) AdminDetails(cart []CartItem) ([]models.OrderDetail, error) {
	priced, err := v.priceCart(cart)
	if err != nil {
		return nil, err
	}
	for i := range priced.details {
		priced.details[i].Price = models.NewMoneyFromDecimal(cart[i].Price)
	}
	return priced.details, nil
}

type pricedCart struct {
	details  []models.OrderDetail
	expected decimal.Decimal
	declared decimal.Decimal
}

func (v *PricingValidator) priceCart(cart []CartItem) (*pricedCart, error) {
	if len(cart) == 0 {
		return nil, ErrMissing
	}
	ids := make([]uint, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductOptID)
	}
	opts, err := v.productRepo.ListOptsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load product options: %w", err)
	}
	optMap := make(map[uint]models.ProductOpt, len(opts))
	for _, opt := range opts {
		optMap[opt.ProductOptID] = opt
	}

	result := &pricedCart{details: make([]models.OrderDetail, 0, len(cart))}
	for _, item := range cart {
		opt, ok := optMap[item.ProductOptID]
		if !ok || opt.ProductID != item.ProductID {
			return nil, ErrInvalidProductOpt
		}
		unit := decimal.NewFromInt(int64(item.Unit))
		result.expected = result.expected.Add(opt.Price.Decimal.Mul(unit))
		result.declared = result.declared.Add(item.Price.Mul(unit))
		result.details = append(result.details, models.OrderDetail{
			ProductID:    item.ProductID,
			ProductOptID: item.ProductOptID,
			Unit:         item.Unit,
			Price:        models.NewMoneyFromDecimal(opt.Price.Decimal),
		})
	}
	result.expected = round2(result.expected)
	result.declared = round2(result.declared)
	return result, nil
}
