package slipcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("slip verify config invalid")
	ErrRequestFailed   = errors.New("slip verify request failed")
	ErrResponseInvalid = errors.New("slip verify response invalid")
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

// Config 凭证核验接口配置
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Result 从凭证中识别出的转账信息
type Result struct {
	TransRef        string
	Amount          decimal.Decimal
	SenderName      string
	SenderAccount   string
	ReceiverName    string
	ReceiverAccount string
}

// Client 凭证核验客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	cfg.normalize()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type verifyResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    *verifyData `json:"data"`
}

type verifyData struct {
	TransRef string          `json:"transRef"`
	Amount   json.RawMessage `json:"amount"`
	Sender   party           `json:"sender"`
	Receiver party           `json:"receiver"`
}

type party struct {
	Account struct {
		Name  json.RawMessage `json:"name"`
		Bank  *accountRef     `json:"bank"`
		Proxy *accountRef     `json:"proxy"`
	} `json:"account"`
}

type accountRef struct {
	Type    string `json:"type"`
	Account string `json:"account"`
}

// Verify 提交凭证图片并解析识别结果
func (c *Client) Verify(ctx context.Context, filename string, content []byte) (*Result, error) {
	if c == nil || c.cfg.BaseURL == "" || c.cfg.Token == "" {
		return nil, ErrConfigInvalid
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrRequestFailed)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/verify", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	return parseResponse(raw)
}

func parseResponse(raw []byte) (*Result, error) {
	var parsed verifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrResponseInvalid)
	}
	amount, err := parseAmount(parsed.Data.Amount)
	if err != nil {
		return nil, err
	}
	return &Result{
		TransRef:        strings.TrimSpace(parsed.Data.TransRef),
		Amount:          amount,
		SenderName:      parseName(parsed.Data.Sender.Account.Name),
		SenderAccount:   firstAccount(parsed.Data.Sender.Account.Bank, parsed.Data.Sender.Account.Proxy),
		ReceiverName:    parseName(parsed.Data.Receiver.Account.Name),
		ReceiverAccount: firstAccount(parsed.Data.Receiver.Account.Proxy, parsed.Data.Receiver.Account.Bank),
	}, nil
}

// parseAmount 兼容 "amount": 130 与 "amount": {"amount": 130}
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, fmt.Errorf("%w: missing amount", ErrResponseInvalid)
	}
	if trimmed[0] == '{' {
		var nested struct {
			Amount json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
		return parseAmount(nested.Amount)
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %s", ErrResponseInvalid, string(trimmed))
	}
	amount, err := decimal.NewFromString(number.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %s", ErrResponseInvalid, string(trimmed))
	}
	return amount, nil
}

// parseName 兼容字符串或 {"th": "...", "en": "..."}，优先泰文
func parseName(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(trimmed, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	var localized struct {
		TH string `json:"th"`
		EN string `json:"en"`
	}
	if err := json.Unmarshal(trimmed, &localized); err != nil {
		return ""
	}
	if name := strings.TrimSpace(localized.TH); name != "" {
		return name
	}
	return strings.TrimSpace(localized.EN)
}

func firstAccount(refs ...*accountRef) string {
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if account := strings.TrimSpace(ref.Account); account != "" {
			return account
		}
	}
	return ""
}

// NormalizeAccount 去掉分隔符并转小写，用于与白名单比较（接口返回的账号可能带掩码 x）
func NormalizeAccount(account string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(account) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// minVisibleDigits 掩码账号至少保留的明文位数，避免全 x 账号匹配任意白名单
const minVisibleDigits = 4

// MaskedAccountMatches 比较两个已归一化的账号，x 位视为通配；长度必须一致
func MaskedAccountMatches(a, b string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	visible := 0
	for i := 0; i < len(a); i++ {
		if a[i] == 'x' || b[i] == 'x' {
			continue
		}
		if a[i] != b[i] {
			return false
		}
		visible++
	}
	return visible >= minVisibleDigits
}
