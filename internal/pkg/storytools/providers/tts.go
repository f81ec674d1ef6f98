package providers

import (
	"context"

	"fable/internal/pkg/storytools"
	"fable/internal/pkg/tts"
)

// ByteDanceTTSProvider 字节跳动 TTS 提供者（使用 pkg/tts 的 Client）
// 实现了 storytools.TTSProvider 接口
type ByteDanceTTSProvider struct {
	client *tts.Client
}

// NewByteDanceTTSProvider 创建基于 TTS 的提供者
//
// Args:
//   - client: TTS 客户端实例（通过 tts.NewClient 创建）
//
// Returns:
//   - *ByteDanceTTSProvider: TTS 提供者实例
func NewByteDanceTTSProvider(client *tts.Client) *ByteDanceTTSProvider {
	return &ByteDanceTTSProvider{
		client: client,
	}
}

// Synthesize 将文本合成为语音
// 实现了 storytools.TTSProvider 接口
func (p *ByteDanceTTSProvider) Synthesize(ctx context.Context, text string, speedRatio float64) (*storytools.TTSResult, error) {
	if p.client == nil {
		return &storytools.TTSResult{
			Success:      false,
			ErrorMessage: "TTS client is required",
		}, nil
	}

	ttsResult, err := p.client.Synthesize(ctx, text, speedRatio)
	if err != nil {
		return &storytools.TTSResult{
			Success:      false,
			ErrorMessage: err.Error(),
		}, err
	}

	return &storytools.TTSResult{
		Success:      ttsResult.Success,
		AudioData:    ttsResult.AudioData,
		Duration:     ttsResult.Duration,
		ErrorMessage: ttsResult.ErrorMessage,
	}, nil
}
