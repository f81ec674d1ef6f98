package t2p

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/volcengine/volcengine-go-sdk/volcengine"
	"github.com/volcengine/volcengine-go-sdk/volcengine/credentials"
	"github.com/volcengine/volcengine-go-sdk/volcengine/session"
)

// Config T2P（火山引擎 Text-to-Picture）配置
type Config struct {
	AccessKey      string
	SecretKey      string
	ReqKey         string
	Width          int
	Height         int
	Scale          float64
	DDIMSteps      int
	UsePreLLM      bool
	UseSR          bool
	ReturnURL      bool
	NegativePrompt string
	APIURL         string // API 端点，默认: https://visual.volcengineapi.com
	Region         string // 区域，默认: cn-north-1
}

const defaultNegativePrompt = "watermark, (water-marked:1.4), (text:1.5), signature, " +
	"letters, logo, subtitle, seal, inscription, nsfw, low resolution, blurry, " +
	"worst quality, mutated hands and fingers, poorly drawn face, bad anatomy"

// ConfigFromEnv 从环境变量创建 T2P 配置
// 支持的环境变量：
//   - VOLCENGINE_ACCESS_KEY: 访问密钥（必需）
//   - VOLCENGINE_SECRET_KEY: 密钥（必需）
//   - T2P_REQ_KEY: 请求密钥（可选，默认: high_aes_general_v21_L）
//   - T2P_WIDTH / T2P_HEIGHT: 图片尺寸（可选，默认: 1280x720）
//   - T2P_SCALE: 引导尺度（可选，默认: 3.5）
//   - T2P_DDIM_STEPS: 推理步数（可选，默认: 25）
//   - T2P_USE_PRE_LLM: 是否使用预训练LLM优化prompt（可选，默认: false）
//   - T2P_USE_SR: 是否使用超分辨率增强（可选，默认: true）
//   - T2P_RETURN_URL: 返回图片URL（可选，默认: false，返回base64）
//   - T2P_NEGATIVE_PROMPT: 负面提示词（可选）
//   - T2P_API_URL: API 端点（可选）
//   - T2P_REGION: 区域（可选，默认: cn-north-1）
func ConfigFromEnv() *Config {
	cfg := &Config{
		AccessKey:      os.Getenv("VOLCENGINE_ACCESS_KEY"),
		SecretKey:      os.Getenv("VOLCENGINE_SECRET_KEY"),
		ReqKey:         envOr("T2P_REQ_KEY", "high_aes_general_v21_L"),
		Width:          envInt("T2P_WIDTH", 1280),
		Height:         envInt("T2P_HEIGHT", 720),
		Scale:          envFloat("T2P_SCALE", 3.5),
		DDIMSteps:      envInt("T2P_DDIM_STEPS", 25),
		UsePreLLM:      os.Getenv("T2P_USE_PRE_LLM") == "true",
		UseSR:          os.Getenv("T2P_USE_SR") != "false", // 默认 true
		ReturnURL:      os.Getenv("T2P_RETURN_URL") == "true",
		NegativePrompt: envOr("T2P_NEGATIVE_PROMPT", defaultNegativePrompt),
		APIURL:         envOr("T2P_API_URL", "https://visual.volcengineapi.com"),
		Region:         envOr("T2P_REGION", "cn-north-1"),
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// Client T2P（火山引擎 Text-to-Picture）客户端
// 用于调用火山引擎的 visual 服务生成图片
type Client struct {
	config     *Config
	session    *session.Session
	httpClient *http.Client
	apiURL     string
	accessKey  string
	secretKey  string
}

// NewClient 创建 T2P 客户端
// 使用 volcengine-go-sdk 的 session 和 credentials
func NewClient(config *Config) (*Client, error) {
	if config.AccessKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("VOLCENGINE_ACCESS_KEY and VOLCENGINE_SECRET_KEY are required")
	}

	creds := credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")

	volcengineConfig := volcengine.NewConfig().
		WithCredentials(creds).
		WithRegion(config.Region)

	sess, err := session.NewSession(volcengineConfig)
	if err != nil {
		return nil, fmt.Errorf("create volcengine session: %w", err)
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://visual.volcengineapi.com"
	}

	return &Client{
		config:     config,
		session:    sess,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		apiURL:     apiURL,
		accessKey:  config.AccessKey,
		secretKey:  config.SecretKey,
	}, nil
}

// GenerateImageRequest 图片生成请求
type GenerateImageRequest struct {
	Prompt         string
	ReqKey         string
	LLMSeed        int
	Seed           int
	Scale          float64
	DDIMSteps      int
	Width          int
	Height         int
	UsePreLLM      bool
	UseSR          bool
	ReturnURL      bool
	NegativePrompt string
}

// GenerateImageResponse 图片生成响应
type GenerateImageResponse struct {
	ResponseMetadata *ResponseMetadata `json:"ResponseMetadata,omitempty"`
	Data             *ImageData        `json:"data,omitempty"`
}

// ResponseMetadata 响应元数据
type ResponseMetadata struct {
	Error *ErrorInfo `json:"Error,omitempty"`
}

// ErrorInfo 错误信息
type ErrorInfo struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// ImageData 图片数据
type ImageData struct {
	BinaryDataBase64 []string `json:"binary_data_base64,omitempty"`
	ImageURL         []string `json:"image_url,omitempty"`
}

// GenerateImage 生成图片（同步接口）
// 使用火山引擎的 cv_process 接口
func (c *Client) GenerateImage(ctx context.Context, req *GenerateImageRequest) (*GenerateImageResponse, error) {
	form := map[string]interface{}{
		"req_key":         req.ReqKey,
		"prompt":          req.Prompt,
		"llm_seed":        req.LLMSeed,
		"seed":            req.Seed,
		"scale":           req.Scale,
		"ddim_steps":      req.DDIMSteps,
		"width":           req.Width,
		"height":          req.Height,
		"use_pre_llm":     req.UsePreLLM,
		"use_sr":          req.UseSR,
		"return_url":      req.ReturnURL,
		"negative_prompt": req.NegativePrompt,
		"logo_info": map[string]interface{}{
			"add_logo": false,
			"position": 0,
			"language": 0,
			"opacity":  0.3,
		},
	}

	requestBody, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/?Action=CVProcess&Version=2020-08-26", c.apiURL)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	// 火山引擎签名
	// 参考: https://www.volcengine.com/docs/6460/6490
	if err := c.signRequest(httpReq, requestBody); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp GenerateImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.ResponseMetadata != nil && apiResp.ResponseMetadata.Error != nil {
		return nil, fmt.Errorf("API error: %s - %s",
			apiResp.ResponseMetadata.Error.Code,
			apiResp.ResponseMetadata.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed, status: %d", resp.StatusCode)
	}

	return &apiResp, nil
}

// GenerateImageSimple 简化版本的图片生成（只需要 prompt）
func (c *Client) GenerateImageSimple(ctx context.Context, prompt string) ([]byte, error) {
	req := &GenerateImageRequest{
		Prompt:         prompt,
		ReqKey:         c.config.ReqKey,
		LLMSeed:        -1,
		Seed:           -1,
		Scale:          c.config.Scale,
		DDIMSteps:      c.config.DDIMSteps,
		Width:          c.config.Width,
		Height:         c.config.Height,
		UsePreLLM:      c.config.UsePreLLM,
		UseSR:          c.config.UseSR,
		ReturnURL:      c.config.ReturnURL,
		NegativePrompt: c.config.NegativePrompt,
	}

	resp, err := c.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, fmt.Errorf("no data in response")
	}

	if len(resp.Data.BinaryDataBase64) == 0 {
		return nil, fmt.Errorf("no binary_data_base64 in response")
	}

	// 解码第一张图片
	imageData, err := base64.StdEncoding.DecodeString(resp.Data.BinaryDataBase64[0])
	if err != nil {
		return nil, fmt.Errorf("decode base64 image data: %w", err)
	}

	return imageData, nil
}

// signRequest 为请求添加火山引擎签名
// 参考: https://www.volcengine.com/docs/6460/6490
func (c *Client) signRequest(req *http.Request, body []byte) error {
	u, err := url.Parse(req.URL.String())
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	date := timestamp[:8]

	method := req.Method
	uri := u.Path
	if uri == "" {
		uri = "/"
	}

	// 查询字符串按字典序排序
	queryParams := u.Query()
	var queryKeys []string
	for k := range queryParams {
		queryKeys = append(queryKeys, k)
	}
	sort.Strings(queryKeys)
	var queryParts []string
	for _, k := range queryKeys {
		for _, v := range queryParams[k] {
			queryParts = append(queryParts, fmt.Sprintf("%s=%s", k, url.QueryEscape(v)))
		}
	}
	queryString := strings.Join(queryParts, "&")

	// Headers 按字典序排序
	headerKeys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		headerKeys = append(headerKeys, strings.ToLower(k))
	}
	sort.Strings(headerKeys)
	var headerParts []string
	for _, k := range headerKeys {
		if k == "host" || k == "content-type" {
			continue
		}
		for _, v := range req.Header[strings.Title(k)] {
			headerParts = append(headerParts, fmt.Sprintf("%s:%s", k, strings.TrimSpace(v)))
		}
	}
	headersString := strings.Join(headerParts, "\n")

	stringToSign := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		method,
		uri,
		queryString,
		headersString,
		string(body))

	// 派生签名密钥: date -> region -> service -> request
	kDate := hmacSHA256([]byte(c.secretKey), date)
	kRegion := hmacSHA256(kDate, c.config.Region)
	kService := hmacSHA256(kRegion, "visual")
	kSigning := hmacSHA256(kService, "request")
	signature := hmacSHA256(kSigning, stringToSign)
	signatureHex := fmt.Sprintf("%x", signature)

	signedHeaders := strings.Join(headerKeys, ";")
	if signedHeaders != "" {
		signedHeaders = ";" + signedHeaders
	}
	authorization := fmt.Sprintf("HMAC-SHA256 Credential=%s/%s/%s/visual/request, SignedHeaders=%s, Signature=%s",
		c.accessKey,
		date,
		c.config.Region,
		signedHeaders,
		signatureHex)

	req.Header.Set("Authorization", authorization)
	req.Header.Set("X-Date", timestamp)

	return nil
}

// hmacSHA256 计算 HMAC-SHA256
func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
