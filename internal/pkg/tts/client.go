package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"fable/internal/pkg/id"
)

// Config TTS 配置
type Config struct {
	APIURL      string // API 地址，默认: https://openspeech.bytedance.com/api/v1/tts
	AccessToken string // 访问令牌（必需）
	AppID       string // 应用ID（可选）
	Cluster     string // 集群名称，默认: volcano_tts
	VoiceType   string // 语音类型，默认: BV115_streaming
	SampleRate  int    // 采样率，默认: 44100
}

// ConfigFromEnv 从环境变量创建 Config
// 支持的环境变量：
//   - TTS_ACCESS_TOKEN: 访问令牌（必需）
//   - TTS_APP_ID: 应用ID（可选）
//   - TTS_VOICE_TYPE: 语音类型（可选，默认: BV115_streaming）
//   - TTS_CLUSTER: 集群名称（可选，默认: volcano_tts）
//   - TTS_SAMPLE_RATE: 采样率（可选，默认: 44100）
//   - TTS_API_URL: API 地址（可选）
func ConfigFromEnv() Config {
	cfg := Config{
		APIURL:      os.Getenv("TTS_API_URL"),
		AccessToken: os.Getenv("TTS_ACCESS_TOKEN"),
		AppID:       os.Getenv("TTS_APP_ID"),
		Cluster:     os.Getenv("TTS_CLUSTER"),
		VoiceType:   os.Getenv("TTS_VOICE_TYPE"),
	}

	if v := os.Getenv("TTS_SAMPLE_RATE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.SampleRate = parsed
		}
	}

	return cfg
}

// Client TTS 客户端封装
// 用于调用火山引擎的 TTS API（文本转语音）
// 参考: https://openspeech.bytedance.com/api/v1/tts
type Client struct {
	apiURL      string
	accessToken string
	appID       string
	cluster     string
	voiceType   string
	sampleRate  int
	httpClient  *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(config Config) (*Client, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("TTS access token is required")
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://openspeech.bytedance.com/api/v1/tts"
	}

	cluster := config.Cluster
	if cluster == "" {
		cluster = "volcano_tts"
	}

	voiceType := config.VoiceType
	if voiceType == "" {
		voiceType = "BV115_streaming"
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = 44100
	}

	return &Client{
		apiURL:      apiURL,
		accessToken: config.AccessToken,
		appID:       config.AppID,
		cluster:     cluster,
		voiceType:   voiceType,
		sampleRate:  sampleRate,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Result TTS生成结果
type Result struct {
	Success      bool    `json:"success"`       // 是否成功
	AudioData    []byte  `json:"-"`             // 音频数据（二进制，不序列化到 JSON）
	Duration     float64 `json:"duration"`      // 音频时长（秒）
	ErrorMessage string  `json:"error_message"` // 错误信息
}

// Synthesize 将文本合成为语音
// 返回 MP3 音频数据和时长，不保存到文件
func (c *Client) Synthesize(ctx context.Context, text string, speedRatio float64) (*Result, error) {
	result := &Result{
		Success: false,
	}

	requestID := id.New()
	reqBody, err := json.Marshal(c.buildRequestConfig(text, requestID, speedRatio))
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("request_id", requestID).
		Int("text_len", len(text)).
		Msg("sending TTS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to send request: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to read response: %v", err)
		return result, err
	}

	if resp.StatusCode != http.StatusOK {
		result.ErrorMessage = fmt.Sprintf("API request failed, status: %d, body: %s", resp.StatusCode, string(respBody))
		return result, fmt.Errorf("API request failed: status %d", resp.StatusCode)
	}

	var apiResp map[string]interface{}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to parse JSON response: %v", err)
		return result, err
	}

	// code 3000 表示成功
	code, _ := apiResp["code"].(float64)
	if code != 3000 {
		message, _ := apiResp["message"].(string)
		if message == "" {
			message = "unknown error"
		}
		result.ErrorMessage = fmt.Sprintf("API response error: %s (code: %.0f)", message, code)
		return result, fmt.Errorf("API response error: %s", message)
	}

	audioDataBase64, ok := apiResp["data"].(string)
	if !ok {
		result.ErrorMessage = "audio data not found in response"
		return result, fmt.Errorf("audio data not found")
	}

	audioData, err := base64.StdEncoding.DecodeString(audioDataBase64)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to decode audio data: %v", err)
		return result, err
	}

	result.Success = true
	result.AudioData = audioData
	result.Duration = parseDuration(apiResp)

	return result, nil
}

// buildRequestConfig 构建请求配置
// 参考官方文档: https://openspeech.bytedance.com/api/v1/tts
func (c *Client) buildRequestConfig(text, requestID string, speedRatio float64) map[string]interface{} {
	appConfig := map[string]interface{}{
		"token":   c.accessToken,
		"cluster": c.cluster,
	}
	if c.appID != "" {
		appConfig["appid"] = c.appID
	}

	audioConfig := map[string]interface{}{
		"voice_type":       c.voiceType,
		"encoding":         "mp3",
		"compression_rate": 1,
		"rate":             c.sampleRate,
		"speed_ratio":      speedRatio,
		"volume_ratio":     1.0,
		"pitch_ratio":      1.0,
	}

	requestConfig := map[string]interface{}{
		"reqid":            requestID,
		"text":             text,
		"text_type":        "plain",
		"operation":        "query",
		"silence_duration": "125",
	}

	return map[string]interface{}{
		"app":     appConfig,
		"user":    map[string]interface{}{"uid": requestID},
		"audio":   audioConfig,
		"request": requestConfig,
	}
}

// parseDuration 从响应的 addition 字段解析音频时长（秒）
// API 返回毫秒，且可能是字符串或数字
func parseDuration(apiResp map[string]interface{}) float64 {
	addition, ok := apiResp["addition"].(map[string]interface{})
	if !ok {
		return 0
	}

	switch v := addition["duration"].(type) {
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed / 1000.0
		}
	case float64:
		return v / 1000.0
	}

	return 0
}
