package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/onething/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"

	// 时薪换算基准：每年 50 个工作周，每周 40 小时
	workingWeeksPerYear = 50
	workingHoursPerWeek = 40
)

var supportedAIProviders = []string{AIProviderOpenAI, AIProviderDeepSeek}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// ErrInvalidIncome 表示年收入不是正数。
var ErrInvalidIncome = errors.New("annual income must be a positive number")

// Settings 描述应用的全局配置信息。
type Settings struct {
	AnnualIncome   string
	HourlyRate     float64
	AIProvider     string
	OpenAIAPIKey   string
	DeepSeekAPIKey string
}

// AISettingsInput 用于更新 AI 相关设置。
type AISettingsInput struct {
	Provider       string
	OpenAIAPIKey   string
	DeepSeekAPIKey string
}

// SettingsService 提供应用设置的读取与更新能力。
type SettingsService struct {
	db              *gorm.DB
	httpClient      httpDoer
	openAIBaseURL   string
	deepSeekBaseURL string
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{
		db:              gdb,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		openAIBaseURL:   "https://api.openai.com/v1",
		deepSeekBaseURL: "https://api.deepseek.com/v1",
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeyAnnualIncome,
	db.SettingKeyHourlyRate,
	db.SettingKeyAIProvider,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
}

// GetSettings 读取应用设置，如未设置将返回默认值。
func (s *SettingsService) GetSettings() (Settings, error) {
	result := Settings{AIProvider: AIProviderOpenAI}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyAnnualIncome:
			result.AnnualIncome = record.Value
		case db.SettingKeyHourlyRate:
			if rate, err := strconv.ParseFloat(record.Value, 64); err == nil {
				result.HourlyRate = rate
			}
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(record.Value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = record.Value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = record.Value
		}
	}

	return result, nil
}

// SetRate 根据年收入换算并保存时薪。
// 换算口径：时薪 = 年收入 / (50 周 × 40 小时)。
func (s *SettingsService) SetRate(annualIncome string) (Settings, error) {
	trimmed := strings.TrimSpace(annualIncome)
	income, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || income <= 0 {
		return Settings{}, ErrInvalidIncome
	}

	rate := income / (workingWeeksPerYear * workingHoursPerWeek)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyAnnualIncome, trimmed); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyHourlyRate, strconv.FormatFloat(rate, 'f', -1, 64))
	})
	if err != nil {
		return Settings{}, fmt.Errorf("save rate: %w", err)
	}

	return s.GetSettings()
}

// ClearRate 清除时薪设置，用户可重新进入换算流程。
func (s *SettingsService) ClearRate() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return upsertSetting(tx, db.SettingKeyHourlyRate, "")
	})
	if err != nil {
		return fmt.Errorf("clear rate: %w", err)
	}
	return nil
}

// UpdateAISettings 保存 AI 平台配置。
func (s *SettingsService) UpdateAISettings(input AISettingsInput) (Settings, error) {
	provider := normalizeAIProvider(input.Provider)
	if provider == "" {
		provider = AIProviderOpenAI
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyAIProvider, provider); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyOpenAIAPIKey, strings.TrimSpace(input.OpenAIAPIKey)); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyDeepSeekAPIKey, strings.TrimSpace(input.DeepSeekAPIKey))
	})
	if err != nil {
		return Settings{}, fmt.Errorf("update ai settings: %w", err)
	}

	return s.GetSettings()
}

// ResetAll 清空全部设置行（包含跨天标记），仅供数据重置使用。
func (s *SettingsService) ResetAll() error {
	if err := s.db.Where("1 = 1").Delete(&db.SystemSetting{}).Error; err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SettingsService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SettingsService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址，便于测试或自定义代理。
func (s *SettingsService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用指定 AI 平台的模型接口验证 API Key 的有效性。
func (s *SettingsService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderOpenAI
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	base := s.openAIBaseURL
	label := "OpenAI"
	if prov == AIProviderDeepSeek {
		base = s.deepSeekBaseURL
		label = "DeepSeek"
	}

	endpoint := strings.TrimRight(base, "/") + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "onething-admin/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 接口失败: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s 返回错误：%s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s 返回错误：%s", label, resp.Status)
	}

	return nil
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
