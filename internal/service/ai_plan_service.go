package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/onething/internal/db"
)

const (
	defaultOpenAIPlanModel   = "gpt-4o-mini"
	defaultDeepSeekPlanModel = "deepseek-chat"
	defaultPlanMaxTokens     = 2048
	defaultPlanTemperature   = 0.4
	planStepCount            = 9
	extendStepCount          = 3
)

// ErrPlanEmpty 表示模型未返回可解析的行动计划。
var ErrPlanEmpty = errors.New("ai plan generation returned no actionable steps")

var (
	frameworkPattern = regexp.MustCompile(`\*\*Framework:\*\*\s*(.*)`)
	checklistPattern = regexp.MustCompile(`(?s)\*\*Checklist:\*\*\s*(.*)`)
)

// PlanGenerator 定义行动计划生成能力，便于在 handler 层注入桩实现。
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, taskText string) (db.ActionPlan, error)
	ExtendPlan(ctx context.Context, taskText string, plan db.ActionPlan) ([]db.ActionPlanItem, error)
}

// AIPlanService 基于大模型接口为任务生成行动计划。
// 模型只产出文本；解析后的计划经由普通的任务更新路径写回存储，
// 核心数据不变式与 AI 调用完全解耦。
type AIPlanService struct {
	client *aiChatClient
}

// NewAIPlanService 构造默认的 AIPlanService。
func NewAIPlanService(settings *SettingsService) *AIPlanService {
	return &AIPlanService{
		client: newAIChatClient(settings, defaultOpenAIPlanModel, defaultDeepSeekPlanModel),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIPlanService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *AIPlanService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *AIPlanService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// GeneratePlan 为任务挑选一个生产力框架并生成步骤清单。
func (s *AIPlanService) GeneratePlan(ctx context.Context, taskText string) (db.ActionPlan, error) {
	text := strings.TrimSpace(taskText)
	if text == "" {
		return db.ActionPlan{}, ErrTaskTextRequired
	}

	content, err := s.client.call(ctx, aiChatRequest{
		SystemPrompt: "You are a world-class productivity coach. Follow the requested output format exactly.",
		UserPrompt:   buildPlanPrompt(text),
		MaxTokens:    defaultPlanMaxTokens,
		Temperature:  defaultPlanTemperature,
	})
	if err != nil {
		return db.ActionPlan{}, err
	}

	plan := parsePlanText(content)
	if len(plan.KeyActions) == 0 {
		return db.ActionPlan{}, ErrPlanEmpty
	}
	return plan, nil
}

// ExtendPlan 在已有计划的基础上追加后续步骤。
func (s *AIPlanService) ExtendPlan(ctx context.Context, taskText string, plan db.ActionPlan) ([]db.ActionPlanItem, error) {
	text := strings.TrimSpace(taskText)
	if text == "" {
		return nil, ErrTaskTextRequired
	}

	content, err := s.client.call(ctx, aiChatRequest{
		SystemPrompt: "You are a world-class productivity coach. Follow the requested output format exactly.",
		UserPrompt:   buildExtendPrompt(text, plan),
		MaxTokens:    defaultPlanMaxTokens,
		Temperature:  defaultPlanTemperature,
	})
	if err != nil {
		return nil, err
	}

	actions := parseChecklistLines(content)
	if len(actions) == 0 {
		return nil, ErrPlanEmpty
	}
	return actions, nil
}

func buildPlanPrompt(taskText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "My single most important goal for today is: \"%s\".\n\n", taskText)
	b.WriteString("Please select and apply the BEST and most PROVEN productivity framework (like GTD, SMART goals, etc.) that is perfectly suited for this specific goal.\n")
	fmt.Fprintf(&b, "Then, generate a list of %d concrete, sequential, and actionable steps. Each step MUST be a single, concise sentence.\n\n", planStepCount)
	b.WriteString("Respond in exactly this format:\n")
	b.WriteString("**Framework:** [Name of the framework you chose]\n")
	b.WriteString("**Checklist:**\n")
	b.WriteString("- [Step 1]\n")
	b.WriteString("- [Step 2]\n")
	return b.String()
}

func buildExtendPrompt(taskText string, plan db.ActionPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "My single most important goal for today is: \"%s\".\n\n", taskText)
	if plan.Framework != "" {
		fmt.Fprintf(&b, "Here is my current action plan, based on the %s framework:\n", plan.Framework)
	} else {
		b.WriteString("Here is my current action plan:\n")
	}
	for _, action := range plan.KeyActions {
		fmt.Fprintf(&b, "- %s\n", action.Text)
	}
	fmt.Fprintf(&b, "\nSuggest %d additional concrete next steps that logically follow. ", extendStepCount)
	b.WriteString("Each step MUST be a single, concise sentence. Respond only with the new steps, one per line, each prefixed with \"- \".\n")
	return b.String()
}

func parsePlanText(content string) db.ActionPlan {
	plan := db.ActionPlan{}

	if match := frameworkPattern.FindStringSubmatch(content); len(match) > 1 {
		plan.Framework = strings.TrimSpace(match[1])
	}

	checklist := content
	if match := checklistPattern.FindStringSubmatch(content); len(match) > 1 {
		checklist = match[1]
	}
	plan.KeyActions = parseChecklistLines(checklist)

	return plan
}

func parseChecklistLines(text string) []db.ActionPlanItem {
	var actions []db.ActionPlanItem
	for _, line := range strings.Split(text, "\n") {
		step := strings.TrimSpace(line)
		step = strings.TrimPrefix(step, "- ")
		step = strings.TrimSpace(strings.TrimPrefix(step, "-"))
		if step == "" || strings.HasPrefix(step, "**") {
			continue
		}
		actions = append(actions, db.ActionPlanItem{
			ID:   uuid.New().String(),
			Text: step,
		})
	}
	return actions
}
