package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

var (
	ErrConfigInvalid = errors.New("vision config invalid")
	ErrRequestFailed = errors.New("vision request failed")
)

// RunResultPrompt 让模型从跑步成绩截图中抽取日期、距离、用时
const RunResultPrompt = `Extract running date, distance (km), and total time (HH:MM:SS) from this running result. Return JSON like:
{
  "date": "2025-06-08",
  "distance": "21.28km",
  "totalTime": "2:29:03"
}`

const defaultModel = "gemini-1.5-flash"

// Analyzer 图像理解接口，返回模型原始文本
type Analyzer interface {
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// Gemini 基于 Gemini API 的实现
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini 创建 Gemini 客户端
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrConfigInvalid)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Describe 发送图片与提示词
func (g *Gemini) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrConfigInvalid
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

// RunAnalysis 成绩识别结果，无法识别的字段为 nil
type RunAnalysis struct {
	Date      *time.Time
	Distance  *float64
	TotalTime *string
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// ParseRunResult 从模型文本中提取第一个 JSON 对象；缺失或格式错误时字段保持 nil
func ParseRunResult(text string) RunAnalysis {
	var result RunAnalysis
	match := jsonObject.FindString(text)
	if match == "" {
		return result
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return result
	}

	if date, ok := parseDate(stringField(raw, "date")); ok {
		result.Date = &date
	}
	if distance, ok := parseDistance(raw["distance"]); ok {
		result.Distance = &distance
	}
	if total := stringField(raw, "totalTime"); total != "" {
		result.TotalTime = &total
	}
	return result
}

func stringField(raw map[string]interface{}, key string) string {
	value, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func parseDistance(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		cleaned := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "km"))
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
