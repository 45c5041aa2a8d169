package promptpay

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

var (
	ErrConfigInvalid = errors.New("promptpay config invalid")
	ErrAmountInvalid = errors.New("promptpay amount invalid")
	ErrRenderFailed  = errors.New("promptpay render failed")
)

// EMVCo 标签
const (
	tagPayloadFormat  = "00"
	tagPointOfInit    = "01"
	tagCreditTransfer = "29"
	tagBillPayment    = "30"
	tagCurrency       = "53"
	tagAmount         = "54"
	tagCountry        = "58"
	tagCRC            = "63"
)

const (
	aidCreditTransfer = "A000000677010111"
	aidBillPayment    = "A000000677010112"

	pointOfInitStatic  = "11"
	pointOfInitDynamic = "12"

	currencyTHB = "764"
	countryTH   = "TH"

	maxRefLength = 20
)

var nonDigit = regexp.MustCompile(`[^0-9]`)
var refPattern = regexp.MustCompile(`^[A-Za-z0-9]*$`)

// BillPayment 账单支付（Tag 30），Ref1 通常为订单号
type BillPayment struct {
	BillerID string
	Ref1     string
	Ref2     string
	Amount   decimal.Decimal
}

// CreditTransfer 个人转账（Tag 29），Target 为手机号 / 身份证号 / 电子钱包号
type CreditTransfer struct {
	Target string
	Amount decimal.Decimal
}

// BuildBillPayment 生成账单支付载荷
func BuildBillPayment(input BillPayment) (string, error) {
	billerID := nonDigit.ReplaceAllString(input.BillerID, "")
	if len(billerID) != 15 && len(billerID) != 12 {
		return "", fmt.Errorf("%w: biller id must be 12 or 15 digits", ErrConfigInvalid)
	}
	ref1 := strings.ToUpper(strings.TrimSpace(input.Ref1))
	ref2 := strings.ToUpper(strings.TrimSpace(input.Ref2))
	if ref1 == "" || len(ref1) > maxRefLength || !refPattern.MatchString(ref1) {
		return "", fmt.Errorf("%w: ref1 %q", ErrConfigInvalid, input.Ref1)
	}
	if len(ref2) > maxRefLength || !refPattern.MatchString(ref2) {
		return "", fmt.Errorf("%w: ref2 %q", ErrConfigInvalid, input.Ref2)
	}

	merchant := tlv("00", aidBillPayment) + tlv("01", billerID) + tlv("02", ref1)
	if ref2 != "" {
		merchant += tlv("03", ref2)
	}
	return assemble(tagBillPayment, merchant, input.Amount)
}

// BuildCreditTransfer 生成个人转账载荷
func BuildCreditTransfer(input CreditTransfer) (string, error) {
	digits := nonDigit.ReplaceAllString(input.Target, "")
	if len(digits) < 9 {
		return "", fmt.Errorf("%w: proxy id %q", ErrConfigInvalid, input.Target)
	}

	var subTag, value string
	switch {
	case len(digits) >= 15:
		subTag, value = "03", digits
	case len(digits) == 13:
		subTag, value = "02", digits
	default:
		// 手机号：去掉前导 0，补国家码 66，左侧补零到 13 位
		subTag = "01"
		value = "0000000000000" + "66" + strings.TrimPrefix(digits, "0")
		value = value[len(value)-13:]
	}
	merchant := tlv("00", aidCreditTransfer) + tlv(subTag, value)
	return assemble(tagCreditTransfer, merchant, input.Amount)
}

// RenderPNG 将载荷渲染为 PNG
func RenderPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 400
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return png, nil
}

// CRC16 计算 CRC-16/CCITT-FALSE（poly 0x1021，init 0xFFFF）
func CRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func assemble(merchantTag, merchant string, amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", ErrAmountInvalid
	}
	pointOfInit := pointOfInitStatic
	if amount.IsPositive() {
		pointOfInit = pointOfInitDynamic
	}

	var b strings.Builder
	b.WriteString(tlv(tagPayloadFormat, "01"))
	b.WriteString(tlv(tagPointOfInit, pointOfInit))
	b.WriteString(tlv(merchantTag, merchant))
	b.WriteString(tlv(tagCurrency, currencyTHB))
	if amount.IsPositive() {
		b.WriteString(tlv(tagAmount, amount.Round(2).StringFixed(2)))
	}
	b.WriteString(tlv(tagCountry, countryTH))
	b.WriteString(tagCRC + "04")
	body := b.String()
	return body + fmt.Sprintf("%04X", CRC16(body)), nil
}

func tlv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}
