package story

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
	"fable/internal/pkg/id"
	"fable/internal/pkg/storytools"
)

// 拼入下一章提示词的上一章结尾长度（按 rune 计）
const previousTailRunes = 300

// CreateStory 根据概念生成完整故事
// 逐章生成，每章带上一章结尾保持连贯；第一章生成后提取一次故事上下文
func (s *Service) CreateStory(ctx context.Context, req CreateStoryRequest) (*story.Story, error) {
	if s.llm == nil {
		return nil, errors.New("LLM provider not configured")
	}
	if req.Concept == "" {
		return nil, errors.New("concept is required")
	}

	numChapters := req.NumChapters
	if numChapters <= 0 {
		numChapters = s.cfg.Story.NumChapters
	}
	tokensPerChapter := req.TokensPerChapter
	if tokensPerChapter <= 0 {
		tokensPerChapter = s.cfg.Story.TokensPerChapter
	}

	st := &story.Story{
		ID:               id.New(),
		Concept:          req.Concept,
		NumChapters:      numChapters,
		TokensPerChapter: tokensPerChapter,
	}

	log.Info().
		Str("story_id", st.ID).
		Int("num_chapters", numChapters).
		Msg("开始生成故事")

	// 标题
	title, err := s.llm.Generate(ctx, storytools.BuildTitlePrompt(req.Concept))
	if err != nil {
		return nil, fmt.Errorf("generate title: %w", err)
	}
	st.Title = firstLine(title)

	// 逐章生成
	previousTail := ""
	for num := 1; num <= numChapters; num++ {
		prompt := storytools.BuildChapterPrompt(req.Concept, num, numChapters, tokensPerChapter, previousTail)
		output, err := s.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate chapter %d: %w", num, err)
		}

		chTitle, content := storytools.SplitChapterOutput(output)
		if content == "" {
			return nil, fmt.Errorf("chapter %d: empty content", num)
		}
		if chTitle == "" {
			chTitle = fmt.Sprintf("第%d章", num)
		}

		st.Chapters = append(st.Chapters, story.Chapter{
			Num:     num,
			Title:   chTitle,
			Content: content,
		})
		previousTail = tailRunes(content, previousTailRunes)

		log.Info().
			Str("story_id", st.ID).
			Int("chapter", num).
			Str("title", chTitle).
			Int("content_len", len(content)).
			Msg("章节生成完成")

		// 第一章生成后提取故事上下文，失败不阻塞流水线
		if num == 1 {
			storyCtx, err := s.extractStoryContext(ctx, content)
			if err != nil {
				log.Warn().Err(err).Str("story_id", st.ID).Msg("故事上下文提取失败，插画提示词将不携带角色信息")
			} else {
				st.Context = storyCtx
			}
		}
	}

	// 侧车文件
	data := &story.StoryData{
		StoryID:  st.ID,
		Title:    st.Title,
		Chapters: st.Chapters,
	}
	if err := s.saveSidecar(st.ID, storyDataFile, data); err != nil {
		return nil, err
	}

	// MongoDB 持久化（可选）
	if s.storyRepo != nil {
		if err := s.storyRepo.Create(ctx, st); err != nil {
			log.Warn().Err(err).Str("story_id", st.ID).Msg("故事持久化失败")
		}
	}

	s.setRenderStatus(ctx, st.ID, "story", nil)

	return st, nil
}

// GetStory 查询故事
// 优先从 MongoDB 读取，缺失时回退到侧车文件
func (s *Service) GetStory(ctx context.Context, storyID string) (*story.Story, error) {
	if s.storyRepo != nil {
		st, err := s.storyRepo.FindByID(ctx, storyID)
		if err == nil {
			return st, nil
		}
		log.Debug().Err(err).Str("story_id", storyID).Msg("MongoDB 查询故事失败，回退到侧车文件")
	}

	var data story.StoryData
	if err := s.loadSidecar(storyID, storyDataFile, &data); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("load story data: %w", err)
	}

	return &story.Story{
		ID:       data.StoryID,
		Title:    data.Title,
		Chapters: data.Chapters,
	}, nil
}

// extractStoryContext 用 LLM 从章节文本提取故事上下文
func (s *Service) extractStoryContext(ctx context.Context, chapterText string) (storytools.StoryContext, error) {
	output, err := s.llm.Generate(ctx, storytools.BuildContextPrompt(chapterText))
	if err != nil {
		return storytools.StoryContext{}, fmt.Errorf("generate story context: %w", err)
	}
	return storytools.ParseStoryContext(output)
}

// firstLine 取文本第一行，去掉空白和包裹的引号
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.Trim(strings.TrimSpace(text), `"「」『』`)
}

// tailRunes 取文本末尾 n 个 rune
func tailRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
