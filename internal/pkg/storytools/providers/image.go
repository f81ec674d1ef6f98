package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"fable/internal/pkg/ark"
	"fable/internal/pkg/storytools"
	"fable/internal/pkg/t2p"
)

// T2PProvider T2P（火山引擎 Text-to-Picture）图片生成提供者
// 适配层，调用 t2p.Client
type T2PProvider struct {
	client *t2p.Client
}

// NewT2PProvider 创建 T2P 提供者
// 从环境变量读取配置，创建 t2p.Client
func NewT2PProvider() (storytools.ImageProvider, error) {
	config := t2p.ConfigFromEnv()
	client, err := t2p.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create T2P client: %w", err)
	}

	return &T2PProvider{
		client: client,
	}, nil
}

// GenerateImage 生成图片
// 调用 t2p.Client.GenerateImageSimple
func (p *T2PProvider) GenerateImage(ctx context.Context, prompt, filename string) ([]byte, error) {
	imageData, err := p.client.GenerateImageSimple(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("T2P generate image: %w", err)
	}

	log.Info().
		Str("filename", filename).
		Int("size", len(imageData)).
		Msg("T2P 图片生成成功")

	return imageData, nil
}

// Name 提供者名称
func (p *T2PProvider) Name() string { return "t2p" }

// ArkImageProvider Ark 图片生成提供者
// 适配层，调用 ark.ImageClient（使用官方 Go SDK）
type ArkImageProvider struct {
	client *ark.ImageClient
}

// NewArkImageProvider 创建 Ark 图片生成提供者
// 从环境变量读取配置，创建 ark.ImageClient
func NewArkImageProvider() (storytools.ImageProvider, error) {
	config := ark.ImageConfigFromEnv()
	client, err := ark.NewImageClient(config)
	if err != nil {
		return nil, fmt.Errorf("create Ark image client: %w", err)
	}

	return &ArkImageProvider{
		client: client,
	}, nil
}

// GenerateImage 生成图片
// 调用 ark.ImageClient.GenerateImageSimple
func (p *ArkImageProvider) GenerateImage(ctx context.Context, prompt, filename string) ([]byte, error) {
	imageData, err := p.client.GenerateImageSimple(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("Ark generate image: %w", err)
	}

	log.Info().
		Str("filename", filename).
		Int("size", len(imageData)).
		Msg("Ark 图片生成成功")

	return imageData, nil
}

// Name 提供者名称
func (p *ArkImageProvider) Name() string { return "ark" }

// FallbackImageProvider 带降级的图片生成提供者
// 主提供者失败时切换到备用提供者，切换是一个显式的、会被记录的决策
type FallbackImageProvider struct {
	primary  storytools.ImageProvider
	fallback storytools.ImageProvider
}

// NewFallbackImageProvider 创建带降级的图片生成提供者
func NewFallbackImageProvider(primary, fallback storytools.ImageProvider) *FallbackImageProvider {
	return &FallbackImageProvider{
		primary:  primary,
		fallback: fallback,
	}
}

// GenerateImage 生成图片，主提供者失败时降级到备用提供者
func (p *FallbackImageProvider) GenerateImage(ctx context.Context, prompt, filename string) ([]byte, error) {
	imageData, err := p.primary.GenerateImage(ctx, prompt, filename)
	if err == nil {
		return imageData, nil
	}

	if p.fallback == nil {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("filename", filename).
		Str("primary", p.primary.Name()).
		Str("fallback", p.fallback.Name()).
		Msg("主图片提供者失败，降级到备用提供者")

	imageData, fbErr := p.fallback.GenerateImage(ctx, prompt, filename)
	if fbErr != nil {
		return nil, fmt.Errorf("primary: %v, fallback: %w", err, fbErr)
	}

	return imageData, nil
}

// Name 提供者名称
func (p *FallbackImageProvider) Name() string {
	if p.fallback == nil {
		return p.primary.Name()
	}
	return fmt.Sprintf("%s+%s", p.primary.Name(), p.fallback.Name())
}
