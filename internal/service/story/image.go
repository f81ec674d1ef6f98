package story

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
	"fable/internal/pkg/storytools"
)

// GenerateImages 为故事的每个章节生成插图
// 先用 LLM 提取场景描述，再逐图生成；单图失败记录警告并继续，
// 一个章节的可用插图可以少于配置值
func (s *Service) GenerateImages(ctx context.Context, storyID string) (*story.ImagesData, error) {
	if s.image == nil {
		return nil, errors.New("image provider not configured")
	}

	st, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	dir, err := s.ensureRunDir(storyID, "images")
	if err != nil {
		return nil, err
	}

	imagesPerChapter := s.cfg.Story.ImagesPerChapter
	data := &story.ImagesData{StoryID: storyID}

	for _, ch := range st.Chapters {
		scenes := s.extractScenes(ctx, ch.Content, imagesPerChapter)

		chImages := story.ChapterImages{ChapterNum: ch.Num}
		for i, scene := range scenes {
			prompt := storytools.BuildIllustrationPrompt(st.Context, scene).Compose()
			filename := fmt.Sprintf("chapter_%03d_image_%02d.jpeg", ch.Num, i)

			imageData, err := s.image.GenerateImage(ctx, prompt, filename)
			if err != nil {
				log.Warn().Err(err).
					Str("story_id", storyID).
					Int("chapter", ch.Num).
					Int("index", i).
					Msg("插图生成失败，跳过")
				continue
			}

			path := filepath.Join(dir, "images", filename)
			if err := os.WriteFile(path, imageData, 0644); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("插图写入失败，跳过")
				continue
			}

			chImages.Images = append(chImages.Images, story.ImageAsset{
				ChapterNum: ch.Num,
				Index:      i,
				Prompt:     prompt,
				Path:       path,
			})
		}

		log.Info().
			Str("story_id", storyID).
			Int("chapter", ch.Num).
			Int("images", len(chImages.Images)).
			Msg("章节插图生成完成")

		data.Chapters = append(data.Chapters, chImages)
	}

	if err := s.saveSidecar(storyID, imagesDataFile, data); err != nil {
		return nil, err
	}

	s.setRenderStatus(ctx, storyID, "images", nil)

	return data, nil
}

// extractScenes 用 LLM 提取章节插画场景
// 提取或解析失败时回退到章节开头的摘录，保证后续阶段总有场景可用
func (s *Service) extractScenes(ctx context.Context, chapterText string, numScenes int) []string {
	if s.llm != nil {
		output, err := s.llm.Generate(ctx, storytools.BuildScenesPrompt(chapterText, numScenes))
		if err == nil {
			scenes, perr := storytools.ParseStringList(output)
			if perr == nil && len(scenes) > 0 {
				if len(scenes) > numScenes {
					scenes = scenes[:numScenes]
				}
				return scenes
			}
			log.Warn().Err(perr).Msg("场景列表解析失败，使用章节摘录")
		} else {
			log.Warn().Err(err).Msg("场景提取失败，使用章节摘录")
		}
	}

	return []string{excerpt(chapterText, 100)}
}

// excerpt 取文本开头 n 个 rune 作为场景摘录
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
