package story

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
)

// TTS 时长缺失时的回退值（秒）
const fallbackSegmentDuration = 5.0

// GenerateAudio 为故事的每个章节生成旁白音频
// 章节文本先切分为适合朗读的段落，逐段合成；单段失败记录警告并跳过。
// 整章合并音频失败不阻塞，后续渲染会用分段音频重新合并
func (s *Service) GenerateAudio(ctx context.Context, storyID string) (*story.AudioData, error) {
	if s.tts == nil {
		return nil, errors.New("TTS provider not configured")
	}

	st, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	dir, err := s.ensureRunDir(storyID, "audio")
	if err != nil {
		return nil, err
	}

	data := &story.AudioData{StoryID: storyID}

	for _, ch := range st.Chapters {
		segments := s.segmenter.Split(ch.Content)

		chAudio := story.ChapterAudio{ChapterNum: ch.Num}
		for i, text := range segments {
			filename := fmt.Sprintf("chapter_%03d_seg_%03d.mp3", ch.Num, i)
			path := filepath.Join(dir, "audio", filename)

			seg, err := s.synthesizeSegment(ctx, text, path)
			if err != nil {
				log.Warn().Err(err).
					Str("story_id", storyID).
					Int("chapter", ch.Num).
					Int("segment", i).
					Msg("段落语音合成失败，跳过")
				continue
			}
			seg.Index = i
			chAudio.Segments = append(chAudio.Segments, *seg)
		}

		// 整章合并，失败时 FullAudio 留空
		if len(chAudio.Segments) > 0 {
			fullPath := filepath.Join(dir, "audio", fmt.Sprintf("chapter_%03d_full.mp3", ch.Num))
			paths := make([]string, 0, len(chAudio.Segments))
			for _, seg := range chAudio.Segments {
				paths = append(paths, seg.AudioPath)
			}
			if err := s.media.ConcatAudios(ctx, paths, fullPath); err != nil {
				log.Warn().Err(err).
					Str("story_id", storyID).
					Int("chapter", ch.Num).
					Msg("整章音频合并失败")
			} else {
				chAudio.FullAudio = fullPath
			}
		}

		log.Info().
			Str("story_id", storyID).
			Int("chapter", ch.Num).
			Int("segments", len(chAudio.Segments)).
			Msg("章节音频生成完成")

		data.Chapters = append(data.Chapters, chAudio)
	}

	if err := s.saveSidecar(storyID, audioDataFile, data); err != nil {
		return nil, err
	}

	s.setRenderStatus(ctx, storyID, "audio", nil)

	return data, nil
}

// synthesizeSegment 合成单个段落并落盘
// 时长优先取 TTS 返回值，缺失时用 ffprobe 重探，再失败则使用回退值
func (s *Service) synthesizeSegment(ctx context.Context, text, path string) (*story.AudioSegment, error) {
	result, err := s.tts.Synthesize(ctx, text, 1.0)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("tts failed: %s", result.ErrorMessage)
	}

	if err := os.WriteFile(path, result.AudioData, 0644); err != nil {
		return nil, fmt.Errorf("write audio file: %w", err)
	}

	duration := result.Duration
	if duration <= 0 {
		duration, err = s.media.GetAudioDuration(ctx, path)
		if err != nil {
			log.Warn().Err(err).
				Str("path", path).
				Float64("fallback", fallbackSegmentDuration).
				Msg("音频时长探测失败，使用回退时长")
			duration = fallbackSegmentDuration
		}
	}

	return &story.AudioSegment{
		Text:      text,
		AudioPath: path,
		Duration:  duration,
	}, nil
}
