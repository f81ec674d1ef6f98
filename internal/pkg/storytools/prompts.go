package storytools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildTitlePrompt 构建生成故事标题的提示词
func BuildTitlePrompt(concept string) string {
	return fmt.Sprintf(`为以下故事概念起一个简短有吸引力的标题，直接输出标题本身，不要引号，不要其他内容。

故事概念：%s`, concept)
}

// BuildChapterPrompt 构建生成单章内容的提示词
// previousTail 为上一章结尾片段，用于保持情节连贯；第一章传空串
func BuildChapterPrompt(concept string, chapterNum, numChapters, tokensPerChapter int, previousTail string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是一位小说作者，正在创作一个共 %d 章的故事。\n", numChapters)
	fmt.Fprintf(&b, "故事概念：%s\n\n", concept)
	if previousTail != "" {
		fmt.Fprintf(&b, "上一章结尾：\n%s\n\n", previousTail)
	}
	fmt.Fprintf(&b, "请写第 %d 章，长度约 %d 字。\n", chapterNum, tokensPerChapter)
	b.WriteString("第一行输出章节标题，之后输出正文。只输出标题和正文，不要其他说明。")
	return b.String()
}

// BuildScenesPrompt 构建提取章节插画场景的提示词
func BuildScenesPrompt(chapterText string, numScenes int) string {
	return fmt.Sprintf(`从以下章节中选出 %d 个最具画面感的场景，每个场景用一句话描述（包含出场角色的名字）。
严格按照 JSON 字符串数组格式输出，不要输出其他内容，例如：["场景一", "场景二"]

章节内容：
%s`, numScenes, chapterText)
}

// SplitChapterOutput 解析章节生成输出
// 第一行为章节标题，其余为正文；没有换行时标题为空
func SplitChapterOutput(output string) (title, content string) {
	output = strings.TrimSpace(output)
	idx := strings.IndexByte(output, '\n')
	if idx < 0 {
		return "", output
	}

	title = strings.TrimSpace(output[:idx])
	title = strings.Trim(title, "#* ")
	content = strings.TrimSpace(output[idx+1:])
	return title, content
}

// ParseStringList 解析 LLM 输出的 JSON 字符串数组
// 容忍包裹的 markdown 代码块；空白项被丢弃
func ParseStringList(output string) ([]string, error) {
	cleaned := stripCodeFence(output)

	var items []string
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse string list: %w", err)
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			result = append(result, s)
		}
	}
	return result, nil
}
