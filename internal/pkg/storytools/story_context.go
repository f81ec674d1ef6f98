package storytools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CharacterProfile 角色设定
type CharacterProfile struct {
	Name        string `json:"name"`        // 角色名
	Description string `json:"description"` // 外貌与着装描述（用于跨插图保持一致）
}

// StoryContext 故事上下文
// 从第一章文本一次性分析得到的不可变值，之后所有插图 prompt 构建
// 都以参数传入，不在生成过程中修改
type StoryContext struct {
	Characters []CharacterProfile `json:"characters"` // 主要角色
	Setting    string             `json:"setting"`    // 时代与地点设定
	Style      string             `json:"style"`      // 视觉风格
}

// CharacterByName 按名字查找角色描述，找不到返回空串
func (c StoryContext) CharacterByName(name string) string {
	for _, ch := range c.Characters {
		if ch.Name == name {
			return ch.Description
		}
	}
	return ""
}

// BuildContextPrompt 构建用于提取故事上下文的 LLM 提示词
func BuildContextPrompt(chapterText string) string {
	return fmt.Sprintf(`分析以下故事文本，提取主要角色、故事设定和适合的插画视觉风格。
严格按照如下 JSON 格式输出，不要输出其他内容：
{
  "characters": [{"name": "角色名", "description": "外貌与着装描述"}],
  "setting": "时代与地点设定",
  "style": "视觉风格描述"
}

故事文本：
%s`, chapterText)
}

// ParseStoryContext 解析 LLM 输出的故事上下文
// 容忍模型输出中包裹的 markdown 代码块
func ParseStoryContext(output string) (StoryContext, error) {
	var ctx StoryContext

	cleaned := stripCodeFence(output)
	if err := json.Unmarshal([]byte(cleaned), &ctx); err != nil {
		return StoryContext{}, fmt.Errorf("parse story context: %w", err)
	}

	return ctx, nil
}

// IllustrationPrompt 结构化插图提示词
// 按固定槽位组织描述，保证跨章节的画面一致性
type IllustrationPrompt struct {
	Subject    string // 画面主体（人物及外观）
	Action     string // 动作/情节
	Background string // 背景环境
	Lighting   string // 光线
	Style      string // 视觉风格
	Atmosphere string // 氛围
}

// Compose 组装最终的生图提示词
// 空槽位跳过，槽位之间用中文句号分隔
func (p IllustrationPrompt) Compose() string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.Style, p.Subject, p.Action, p.Background, p.Lighting, p.Atmosphere} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "。")
}

// BuildIllustrationPrompt 为一个场景构建插图提示词
// 角色一致性通过把 StoryContext 中出现在场景里的角色描述注入主体槽位实现
func BuildIllustrationPrompt(storyCtx StoryContext, sceneDesc string) IllustrationPrompt {
	subject := sceneDesc
	var matched []string
	for _, ch := range storyCtx.Characters {
		if ch.Name != "" && strings.Contains(sceneDesc, ch.Name) {
			matched = append(matched, fmt.Sprintf("%s（%s）", ch.Name, ch.Description))
		}
	}
	if len(matched) > 0 {
		subject = fmt.Sprintf("%s，画面中的角色：%s", sceneDesc, strings.Join(matched, "；"))
	}

	return IllustrationPrompt{
		Subject:    subject,
		Background: storyCtx.Setting,
		Style:      storyCtx.Style,
	}
}

// stripCodeFence 去掉模型输出中可能包裹的 ```json 代码块
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
