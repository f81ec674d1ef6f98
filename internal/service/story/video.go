package story

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
	"fable/internal/pkg/id"
	"fable/internal/pkg/storytools"
)

// GenerateVideo 渲染故事视频
// 每个章节独立走状态机，单章失败进入跳过终态，不影响其他章节；
// 最后把可读的章节视频按章节号顺序合并为全片
func (s *Service) GenerateVideo(ctx context.Context, storyID string) (*story.VideoResult, error) {
	st, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if len(st.Chapters) == 0 {
		return nil, fmt.Errorf("story %s has no chapters", storyID)
	}

	var audioData story.AudioData
	if err := s.loadSidecar(storyID, audioDataFile, &audioData); err != nil {
		return nil, fmt.Errorf("load audio data (run audio stage first): %w", err)
	}
	var imagesData story.ImagesData
	if err := s.loadSidecar(storyID, imagesDataFile, &imagesData); err != nil {
		return nil, fmt.Errorf("load images data (run image stage first): %w", err)
	}

	dir, err := s.ensureRunDir(storyID, "videos")
	if err != nil {
		return nil, err
	}
	videosDir := filepath.Join(dir, "videos")

	audioByChapter := make(map[int]story.ChapterAudio, len(audioData.Chapters))
	for _, ca := range audioData.Chapters {
		audioByChapter[ca.ChapterNum] = ca
	}
	imagesByChapter := make(map[int]story.ChapterImages, len(imagesData.Chapters))
	for _, ci := range imagesData.Chapters {
		imagesByChapter[ci.ChapterNum] = ci
	}

	result := &story.VideoResult{StoryID: storyID}

	chapters := make([]story.Chapter, len(st.Chapters))
	copy(chapters, st.Chapters)
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Num < chapters[j].Num })

	for _, ch := range chapters {
		render := s.renderChapter(ctx, ch, audioByChapter[ch.Num], imagesByChapter[ch.Num], videosDir)
		result.Renders = append(result.Renders, render.ChapterRender)
		if render.State == story.RenderStateRendered {
			result.ChapterVideos = append(result.ChapterVideos, story.ChapterVideo{
				ChapterNum: ch.Num,
				Title:      ch.Title,
				VideoPath:  render.videoPath,
			})
		}
		s.setRenderStatus(ctx, storyID, "video", result.Renders)
	}

	// 全片合并：排除探测不到时长的章节视频
	result.FullVideo = s.concatFullVideo(ctx, storyID, result.ChapterVideos, dir)

	if err := s.saveSidecar(storyID, videoDataFile, result); err != nil {
		return nil, err
	}

	s.persistVideoRecord(ctx, st, result)
	s.uploadArtifacts(ctx, storyID, result)
	s.setRenderStatus(ctx, storyID, "done", result.Renders)

	log.Info().
		Str("story_id", storyID).
		Int("rendered", len(result.ChapterVideos)).
		Int("total", len(chapters)).
		Bool("full_video", result.FullVideo != "").
		Msg("视频渲染完成")

	return result, nil
}

// chapterRender 单章渲染的内部结果
type chapterRender struct {
	story.ChapterRender
	videoPath string
}

// renderChapter 渲染单个章节
// 状态机：pending -> audio_attached -> allocation_computed -> rendered，
// 失败分支进入 skipped_no_media / skipped_render_error
func (s *Service) renderChapter(ctx context.Context, ch story.Chapter, audio story.ChapterAudio, images story.ChapterImages, videosDir string) chapterRender {
	render := chapterRender{
		ChapterRender: story.ChapterRender{
			ChapterNum: ch.Num,
			State:      story.RenderStatePending,
		},
	}
	logger := log.With().Int("chapter", ch.Num).Logger()

	skip := func(state story.RenderState, err error) chapterRender {
		render.State = state
		render.Error = err.Error()
		logger.Warn().Err(err).Str("state", string(state)).Msg("章节渲染跳过")
		return render
	}

	// 音轨：缺媒体和合并失败走不同的跳过终态
	audioTrack, segDurations, err := s.chapterAudioTrack(ctx, ch.Num, audio, videosDir)
	if err != nil {
		if errors.Is(err, ErrNoAudioTrack) {
			return skip(story.RenderStateSkippedNoMedia, err)
		}
		return skip(story.RenderStateSkippedRenderError, err)
	}
	render.State = story.RenderStateAudioAttached

	// 时间轴分配：文件已不存在的插图剔除，只用剩余的分配
	imagePaths := make([]string, 0, len(images.Images))
	for _, img := range images.Images {
		if _, err := os.Stat(img.Path); err != nil {
			logger.Warn().Str("image", img.Path).Msg("插图文件缺失，跳过该图")
			continue
		}
		imagePaths = append(imagePaths, img.Path)
	}
	allocation, err := storytools.AllocateTimeline(segDurations, imagePaths)
	if err != nil {
		if errors.Is(err, storytools.ErrNoUsableMedia) {
			return skip(story.RenderStateSkippedNoMedia, err)
		}
		return skip(story.RenderStateSkippedRenderError, err)
	}
	render.State = story.RenderStateAllocationComputed

	// 逐片段渲染静态图片视频，再合并、合成音轨
	videoPath := filepath.Join(videosDir, fmt.Sprintf("chapter_%03d.mp4", ch.Num))
	if err := s.renderTimeline(ctx, ch.Num, allocation, audioTrack, videoPath, videosDir); err != nil {
		return skip(story.RenderStateSkippedRenderError, err)
	}

	render.State = story.RenderStateRendered
	render.videoPath = videoPath
	logger.Info().Str("video", videoPath).Msg("章节视频渲染完成")
	return render
}

// chapterAudioTrack 返回章节音轨路径和各段时长
// 文件已不存在的音频段剔除；优先用已合并的整章音频，缺失时现场合并分段音频
func (s *Service) chapterAudioTrack(ctx context.Context, chapterNum int, audio story.ChapterAudio, videosDir string) (string, []float64, error) {
	durations := make([]float64, 0, len(audio.Segments))
	paths := make([]string, 0, len(audio.Segments))
	for _, seg := range audio.Segments {
		if _, err := os.Stat(seg.AudioPath); err != nil {
			log.Warn().Int("chapter", chapterNum).Str("audio", seg.AudioPath).Msg("音频段文件缺失，跳过该段")
			continue
		}
		durations = append(durations, seg.Duration)
		paths = append(paths, seg.AudioPath)
	}
	if len(paths) == 0 {
		return "", nil, ErrNoAudioTrack
	}

	if audio.FullAudio != "" {
		if _, err := os.Stat(audio.FullAudio); err == nil {
			return audio.FullAudio, durations, nil
		}
		log.Warn().Int("chapter", chapterNum).Str("audio", audio.FullAudio).Msg("整章音频文件缺失，改用分段合并")
	}

	track := filepath.Join(videosDir, fmt.Sprintf("chapter_%03d_track.mp3", chapterNum))
	if err := s.media.ConcatAudios(ctx, paths, track); err != nil {
		return "", nil, fmt.Errorf("concat audio track: %w", err)
	}
	return track, durations, nil
}

// renderTimeline 按时间轴分配渲染章节视频
func (s *Service) renderTimeline(ctx context.Context, chapterNum int, allocation *storytools.Allocation, audioTrack, outputPath, videosDir string) error {
	clipPaths := make([]string, 0, len(allocation.Placements))
	defer func() {
		for _, p := range clipPaths {
			os.Remove(p)
		}
	}()

	for i, p := range allocation.Placements {
		clipPath := filepath.Join(videosDir, fmt.Sprintf("chapter_%03d_clip_%03d.mp4", chapterNum, i))
		err := s.media.CreateImageClip(ctx, p.ImagePath, clipPath, p.Duration,
			s.cfg.Video.Width, s.cfg.Video.Height, s.cfg.Video.FPS)
		if err != nil {
			return fmt.Errorf("create clip %d: %w", i, err)
		}
		clipPaths = append(clipPaths, clipPath)
	}

	silentPath := filepath.Join(videosDir, fmt.Sprintf("chapter_%03d_silent.mp4", chapterNum))
	if err := s.media.ConcatVideos(ctx, clipPaths, silentPath); err != nil {
		return fmt.Errorf("concat clips: %w", err)
	}
	defer os.Remove(silentPath)

	if err := s.media.MuxAudio(ctx, silentPath, audioTrack, outputPath); err != nil {
		return fmt.Errorf("mux audio: %w", err)
	}
	return nil
}

// concatFullVideo 把章节视频合并为全片
// 探测不到时长的章节视频排除并警告；没有可用视频时不算错误，返回空串
func (s *Service) concatFullVideo(ctx context.Context, storyID string, chapterVideos []story.ChapterVideo, dir string) string {
	readable := make([]string, 0, len(chapterVideos))
	for _, cv := range chapterVideos {
		if _, err := s.media.GetVideoDuration(ctx, cv.VideoPath); err != nil {
			log.Warn().Err(err).
				Str("story_id", storyID).
				Int("chapter", cv.ChapterNum).
				Str("video", cv.VideoPath).
				Msg("章节视频不可读，不纳入全片")
			continue
		}
		readable = append(readable, cv.VideoPath)
	}

	if len(readable) == 0 {
		log.Warn().Str("story_id", storyID).Msg("没有可用章节视频，跳过全片合并")
		return ""
	}

	fullPath := filepath.Join(dir, "full_video.mp4")
	if err := s.media.ConcatVideos(ctx, readable, fullPath); err != nil {
		log.Warn().Err(err).Str("story_id", storyID).Msg("全片合并失败")
		return ""
	}
	return fullPath
}

// persistVideoRecord 持久化渲染结果（MongoDB 不可用时跳过）
func (s *Service) persistVideoRecord(ctx context.Context, st *story.Story, result *story.VideoResult) {
	if s.videoRepo == nil {
		return
	}

	record := &story.VideoRecord{
		ID:            id.New(),
		StoryID:       st.ID,
		Title:         st.Title,
		FullVideo:     result.FullVideo,
		ChapterVideos: result.ChapterVideos,
	}
	if err := s.videoRepo.Create(ctx, record); err != nil {
		log.Warn().Err(err).Str("story_id", st.ID).Msg("视频记录持久化失败")
	}
}

// uploadArtifacts 上传成片与侧车文件（存储不可用时跳过，失败仅警告）
func (s *Service) uploadArtifacts(ctx context.Context, storyID string, result *story.VideoResult) {
	if s.store == nil {
		return
	}

	upload := func(localPath, key, contentType string) {
		file, err := os.Open(localPath)
		if err != nil {
			log.Warn().Err(err).Str("path", localPath).Msg("打开待上传文件失败")
			return
		}
		defer file.Close()

		if _, err := s.store.Upload(ctx, key, file, contentType); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("文件上传失败")
		}
	}

	for _, cv := range result.ChapterVideos {
		upload(cv.VideoPath, fmt.Sprintf("stories/%s/%s", storyID, filepath.Base(cv.VideoPath)), "video/mp4")
	}
	if result.FullVideo != "" {
		upload(result.FullVideo, fmt.Sprintf("stories/%s/full_video.mp4", storyID), "video/mp4")
	}
	upload(filepath.Join(s.runDir(storyID), videoDataFile),
		fmt.Sprintf("stories/%s/%s", storyID, videoDataFile), "application/json")
}
