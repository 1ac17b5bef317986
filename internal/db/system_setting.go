package db

import "gorm.io/gorm"

// SystemSetting 存储应用级的键值对配置。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyLastVisitDate 记录每日重置逻辑最后一次执行的本地日期。
	SettingKeyLastVisitDate = "last_visit_date"
	// SettingKeyAnnualIncome 表示用户填写的年收入原始值。
	SettingKeyAnnualIncome = "annual_income"
	// SettingKeyHourlyRate 表示换算后的时薪。
	SettingKeyHourlyRate = "hourly_rate"
	// SettingKeyAIProvider 表示所选 AI 平台。
	SettingKeyAIProvider = "ai_provider"
	// SettingKeyOpenAIAPIKey 表示 OpenAI API Key。
	SettingKeyOpenAIAPIKey = "openai_api_key"
	// SettingKeyDeepSeekAPIKey 表示 DeepSeek API Key。
	SettingKeyDeepSeekAPIKey = "deepseek_api_key"
)
