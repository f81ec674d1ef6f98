package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client FFmpeg 客户端
// 用于封装 FFmpeg 命令调用
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// VideoInfo 视频信息
type VideoInfo struct {
	Width    int     // 宽度
	Height   int     // 高度
	FPS      float64 // 帧率
	Duration float64 // 时长（秒）
}

// AudioInfo 音频信息
type AudioInfo struct {
	Duration float64 // 时长（秒）
}

// probeResult ffprobe -of json 的输出结构
// 时长在 format 块里以字符串形式给出
type probeResult struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"` // 格式: "30000/1001"
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseVideoInfo 解析 ffprobe 的 JSON 输出
func parseVideoInfo(output []byte) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &VideoInfo{}
	if probe.Format.Duration != "" {
		duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
		}
		info.Duration = duration
	}

	if len(probe.Streams) > 0 {
		stream := probe.Streams[0]
		info.Width = stream.Width
		info.Height = stream.Height
		if num, den, ok := strings.Cut(stream.RFrameRate, "/"); ok {
			n, errN := strconv.Atoi(num)
			d, errD := strconv.Atoi(den)
			if errN == nil && errD == nil && d > 0 {
				info.FPS = float64(n) / float64(d)
			}
		}
	}

	return info, nil
}

// parseAudioInfo 解析 ffprobe 的 JSON 输出（仅时长）
func parseAudioInfo(output []byte) (*AudioInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &AudioInfo{}
	if probe.Format.Duration != "" {
		duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
		}
		info.Duration = duration
	}

	return info, nil
}

// GetVideoInfo 获取视频信息
func (c *Client) GetVideoInfo(ctx context.Context, videoPath string) (*VideoInfo, error) {
	// ffprobe -v error -select_streams v:0 -show_entries stream=width,height,r_frame_rate -show_entries format=duration -of json video.mp4
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseVideoInfo(output)
}

// GetAudioInfo 获取音频信息
func (c *Client) GetAudioInfo(ctx context.Context, audioPath string) (*AudioInfo, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseAudioInfo(output)
}

// GetAudioDuration 获取音频时长（秒）
func (c *Client) GetAudioDuration(ctx context.Context, audioPath string) (float64, error) {
	info, err := c.GetAudioInfo(ctx, audioPath)
	if err != nil {
		return 0, err
	}
	if info.Duration <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", audioPath)
	}
	return info.Duration, nil
}

// GetVideoDuration 获取视频时长（秒）
// 用于校验视频文件是否可读
func (c *Client) GetVideoDuration(ctx context.Context, videoPath string) (float64, error) {
	info, err := c.GetVideoInfo(ctx, videoPath)
	if err != nil {
		return 0, err
	}
	if info.Duration <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", videoPath)
	}
	return info.Duration, nil
}

// CreateImageClip 从单张图片创建静态视频片段
// 图片先按短边放大到目标分辨率，再居中裁剪，不拉伸变形
func (c *Client) CreateImageClip(ctx context.Context, imagePath, outputPath string, duration float64, width, height, fps int) error {
	// ffmpeg -y -loop 1 -i image.jpg -t duration -vf "scale=w:h:force_original_aspect_ratio=increase,crop=w:h,setsar=1" -c:v libx264 -pix_fmt yuv420p -r fps output.mp4
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		width, height, width, height)

	args := []string{
		"-y", // 覆盖输出文件
		"-loop", "1",
		"-i", imagePath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", vf,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%d", fps),
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	log.Debug().
		Str("image", imagePath).
		Str("output", outputPath).
		Float64("duration", duration).
		Msg("图片片段创建成功")

	return nil
}

// ConcatVideos 合并多个视频文件
// 使用 concat demuxer（需要创建 concat list 文件）
func (c *Client) ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error {
	if len(videoPaths) == 0 {
		return fmt.Errorf("no videos to concat")
	}

	concatListFile, cleanup, err := writeConcatList(videoPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer cleanup()

	// ffmpeg -f concat -safe 0 -i concat_list.txt -c copy output.mp4
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c", "copy", // 使用 copy 避免重新编码
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	log.Info().
		Int("count", len(videoPaths)).
		Str("output", outputPath).
		Msg("视频合并成功")

	return nil
}

// ConcatAudios 按顺序合并多个音频文件
func (c *Client) ConcatAudios(ctx context.Context, audioPaths []string, outputPath string) error {
	if len(audioPaths) == 0 {
		return fmt.Errorf("no audios to concat")
	}

	concatListFile, cleanup, err := writeConcatList(audioPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer cleanup()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c", "copy",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg audio concat failed: %w", err)
	}

	log.Info().
		Int("count", len(audioPaths)).
		Str("output", outputPath).
		Msg("音频合并成功")

	return nil
}

// MuxAudio 将音轨合成到视频上
// 视频流直接复制，音频重编码为 AAC，以较短的流为准截断
func (c *Client) MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "160k",
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w", err)
	}

	log.Info().
		Str("video", videoPath).
		Str("audio", audioPath).
		Str("output", outputPath).
		Msg("音轨合成成功")

	return nil
}

// writeConcatList 生成 concat demuxer 的列表文件
func writeConcatList(paths []string, dir string) (string, func(), error) {
	listFile := filepath.Join(dir, fmt.Sprintf("concat_list_%d.txt", time.Now().UnixNano()))

	file, err := os.Create(listFile)
	if err != nil {
		return "", nil, fmt.Errorf("create concat list file: %w", err)
	}

	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			file.Close()
			os.Remove(listFile)
			return "", nil, fmt.Errorf("get absolute path: %w", err)
		}
		fmt.Fprintf(file, "file '%s'\n", absPath)
	}
	if err := file.Close(); err != nil {
		os.Remove(listFile)
		return "", nil, err
	}

	return listFile, func() { os.Remove(listFile) }, nil
}
