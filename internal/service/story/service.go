package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"fable/internal/ai/component"
	"fable/internal/config"
	"fable/internal/model/story"
	"fable/internal/pkg/cache"
	"fable/internal/pkg/ffmpeg"
	"fable/internal/pkg/mongodb"
	"fable/internal/pkg/storage"
	"fable/internal/pkg/storagefactory"
	"fable/internal/pkg/storytools"
	"fable/internal/pkg/storytools/providers"
	"fable/internal/pkg/tts"
	storyrepo "fable/internal/repository/story"
)

var (
	// ErrNoAudioTrack 章节没有可用音轨
	ErrNoAudioTrack = errors.New("no audio track for chapter")
	// ErrStoryNotFound 故事不存在
	ErrStoryNotFound = errors.New("story not found")
)

// 侧车文件名，每个阶段产物独立保存，支持跳过/续跑
const (
	storyDataFile  = "story_data.json"
	imagesDataFile = "images_data.json"
	audioDataFile  = "audio_data.json"
	videoDataFile  = "video_data.json"
)

// CreateStoryRequest 创建故事请求
type CreateStoryRequest struct {
	Concept          string `json:"concept"`
	NumChapters      int    `json:"num_chapters"`
	TokensPerChapter int    `json:"tokens_per_chapter"`
}

// RenderStatus 渲染进度（缓存在 Redis，供前端轮询）
type RenderStatus struct {
	StoryID   string                `json:"story_id"`
	Stage     string                `json:"stage"` // story/images/audio/video/done
	Chapters  []story.ChapterRender `json:"chapters,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// MediaProcessor 媒体处理接口
// 由 ffmpeg.Client 实现，抽象出来方便编排逻辑的单测
type MediaProcessor interface {
	GetAudioDuration(ctx context.Context, path string) (float64, error)
	GetVideoDuration(ctx context.Context, path string) (float64, error)
	CreateImageClip(ctx context.Context, imagePath, outputPath string, duration float64, width, height, fps int) error
	ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error
	ConcatAudios(ctx context.Context, audioPaths []string, outputPath string) error
	MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// StoryService 故事服务接口
type StoryService interface {
	CreateStory(ctx context.Context, req CreateStoryRequest) (*story.Story, error)
	GetStory(ctx context.Context, id string) (*story.Story, error)
	GenerateImages(ctx context.Context, storyID string) (*story.ImagesData, error)
	GenerateAudio(ctx context.Context, storyID string) (*story.AudioData, error)
	GenerateVideo(ctx context.Context, storyID string) (*story.VideoResult, error)
	GenerateAll(ctx context.Context, req CreateStoryRequest) (*story.VideoResult, error)
	ListVideos(ctx context.Context, limit, offset int64) ([]*story.VideoRecord, error)
	RenderStatus(ctx context.Context, storyID string) (*RenderStatus, error)
}

// Service 故事服务实现
// repo/cache/storage 均可为 nil：缺失时流水线只依赖侧车文件运行
type Service struct {
	cfg       *config.Config
	llm       storytools.LLMProvider
	tts       storytools.TTSProvider
	image     storytools.ImageProvider
	media     MediaProcessor
	segmenter *storytools.SpeechSegmenter

	storyRepo storyrepo.StoryRepository
	videoRepo storyrepo.VideoRecordRepository
	store     storage.Storage
	cache     *cache.RedisCache
}

// Options 服务依赖
type Options struct {
	LLM       storytools.LLMProvider
	TTS       storytools.TTSProvider
	Image     storytools.ImageProvider
	Media     MediaProcessor
	StoryRepo storyrepo.StoryRepository
	VideoRepo storyrepo.VideoRecordRepository
	Store     storage.Storage
	Cache     *cache.RedisCache
}

// NewService 创建故事服务
func NewService(cfg *config.Config, opts Options) *Service {
	return &Service{
		cfg:       cfg,
		llm:       opts.LLM,
		tts:       opts.TTS,
		image:     opts.Image,
		media:     opts.Media,
		segmenter: storytools.NewSpeechSegmenter(cfg.Story.SegmentMaxLen),
		storyRepo: opts.StoryRepo,
		videoRepo: opts.VideoRepo,
		store:     opts.Store,
		cache:     opts.Cache,
	}
}

// Bootstrap 按配置组装完整的故事服务
// 外部依赖（LLM/TTS/生图/Mongo/Redis/存储）缺失时记录警告并降级运行，
// 只有 ffmpeg 是硬依赖
func Bootstrap(ctx context.Context, cfg *config.Config) (*Service, func(), error) {
	opts := Options{
		Media: ffmpeg.NewClient(),
	}

	// LLM
	if cfg.AI.APIKey != "" {
		chatModel, err := component.NewChatModel(ctx, &cfg.AI)
		if err != nil {
			return nil, nil, fmt.Errorf("create chat model: %w", err)
		}
		opts.LLM = providers.NewEinoProvider(chatModel)
	} else {
		log.Warn().Msg("AI api key not configured, story generation disabled")
	}

	// TTS
	ttsCfg := tts.ConfigFromEnv()
	if ttsCfg.AccessToken != "" {
		ttsClient, err := tts.NewClient(ttsCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create TTS client: %w", err)
		}
		opts.TTS = providers.NewByteDanceTTSProvider(ttsClient)
	} else {
		log.Warn().Msg("TTS access token not configured, audio generation disabled")
	}

	// 图片生成：T2P 为主，Ark 为备
	primary, err := providers.NewT2PProvider()
	if err != nil {
		log.Warn().Err(err).Msg("T2P provider unavailable")
	}
	fallback, err := providers.NewArkImageProvider()
	if err != nil {
		log.Warn().Err(err).Msg("Ark image provider unavailable")
	}
	switch {
	case primary != nil && fallback != nil:
		opts.Image = providers.NewFallbackImageProvider(primary, fallback)
	case primary != nil:
		opts.Image = primary
	case fallback != nil:
		opts.Image = fallback
	default:
		log.Warn().Msg("no image provider configured, image generation disabled")
	}

	var cleanups []func()

	// MongoDB（可选）
	if cfg.Mongo.URI != "" {
		mongoClient, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
			opts.StoryRepo = storyrepo.NewStoryRepo(mongoClient.Database())
			opts.VideoRepo = storyrepo.NewVideoRecordRepo(mongoClient.Database())
			cleanups = append(cleanups, func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoClient.Close(closeCtx)
			})
		}
	}

	// Redis（可选）
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			opts.Cache = redisCache
			cleanups = append(cleanups, func() { _ = redisCache.Close() })
		}
	}

	// 对象存储（可选）
	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("storage unavailable, artifact upload disabled")
	} else {
		opts.Store = store
	}

	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	return NewService(cfg, opts), cleanup, nil
}

// runDir 一个故事的工作目录
func (s *Service) runDir(storyID string) string {
	return filepath.Join(s.cfg.Story.OutputDir, storyID)
}

// ensureRunDir 创建故事工作目录及子目录
func (s *Service) ensureRunDir(storyID string, subdirs ...string) (string, error) {
	dir := s.runDir(storyID)
	for _, sub := range append([]string{""}, subdirs...) {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return "", fmt.Errorf("create run dir: %w", err)
		}
	}
	return dir, nil
}

// saveSidecar 将阶段产物写入侧车 JSON 文件
func (s *Service) saveSidecar(storyID, filename string, data any) error {
	dir, err := s.ensureRunDir(storyID)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	log.Debug().Str("path", path).Msg("sidecar saved")
	return nil
}

// loadSidecar 读取阶段产物侧车文件
func (s *Service) loadSidecar(storyID, filename string, dest any) error {
	path := filepath.Join(s.runDir(storyID), filename)
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// setRenderStatus 更新渲染进度缓存（Redis 不可用时跳过）
func (s *Service) setRenderStatus(ctx context.Context, storyID, stage string, chapters []story.ChapterRender) {
	if s.cache == nil {
		return
	}

	status := &RenderStatus{
		StoryID:   storyID,
		Stage:     stage,
		Chapters:  chapters,
		UpdatedAt: time.Now(),
	}
	if err := s.cache.Set(ctx, cache.RenderStatusKey(storyID), status, cache.RenderStatusTTL); err != nil {
		log.Warn().Err(err).Str("story_id", storyID).Msg("failed to update render status cache")
	}
}

// RenderStatus 查询渲染进度
func (s *Service) RenderStatus(ctx context.Context, storyID string) (*RenderStatus, error) {
	if s.cache == nil {
		return nil, errors.New("render status cache not available")
	}

	var status RenderStatus
	if err := s.cache.Get(ctx, cache.RenderStatusKey(storyID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListVideos 列出视频记录
func (s *Service) ListVideos(ctx context.Context, limit, offset int64) ([]*story.VideoRecord, error) {
	if s.videoRepo == nil {
		return nil, errors.New("video records not available without MongoDB")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.videoRepo.List(ctx, limit, offset)
}

// GenerateAll 一键执行完整流水线
func (s *Service) GenerateAll(ctx context.Context, req CreateStoryRequest) (*story.VideoResult, error) {
	st, err := s.CreateStory(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("story stage: %w", err)
	}

	if _, err := s.GenerateImages(ctx, st.ID); err != nil {
		return nil, fmt.Errorf("image stage: %w", err)
	}

	if _, err := s.GenerateAudio(ctx, st.ID); err != nil {
		return nil, fmt.Errorf("audio stage: %w", err)
	}

	result, err := s.GenerateVideo(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("video stage: %w", err)
	}
	return result, nil
}
