package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fable/internal/config"
	"fable/internal/model/story"
)

// fakeMedia 测试用媒体处理器
// 通过子串匹配控制特定文件的失败，其余调用落盘占位文件
type fakeMedia struct {
	failClipSubstr   string          // CreateImageClip 输入图片路径包含该子串时失败
	failMuxSubstr    string          // MuxAudio 输出路径包含该子串时失败
	failConcatAudios bool            // ConcatAudios 始终失败
	unreadableVideo  map[string]bool // GetVideoDuration 对这些路径报错
}

func (m *fakeMedia) GetAudioDuration(ctx context.Context, path string) (float64, error) {
	return 3.0, nil
}

func (m *fakeMedia) GetVideoDuration(ctx context.Context, path string) (float64, error) {
	if m.unreadableVideo[path] {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return 10.0, nil
}

func (m *fakeMedia) CreateImageClip(ctx context.Context, imagePath, outputPath string, duration float64, width, height, fps int) error {
	if m.failClipSubstr != "" && strings.Contains(imagePath, m.failClipSubstr) {
		return errors.New("ffmpeg failed")
	}
	return os.WriteFile(outputPath, []byte("clip"), 0644)
}

func (m *fakeMedia) ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error {
	if len(videoPaths) == 0 {
		return errors.New("no videos to concat")
	}
	return os.WriteFile(outputPath, []byte("video"), 0644)
}

func (m *fakeMedia) ConcatAudios(ctx context.Context, audioPaths []string, outputPath string) error {
	if m.failConcatAudios {
		return errors.New("ffmpeg audio concat failed")
	}
	if len(audioPaths) == 0 {
		return errors.New("no audios to concat")
	}
	return os.WriteFile(outputPath, []byte("audio"), 0644)
}

func (m *fakeMedia) MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if m.failMuxSubstr != "" && strings.Contains(outputPath, m.failMuxSubstr) {
		return errors.New("ffmpeg mux failed")
	}
	return os.WriteFile(outputPath, []byte("muxed"), 0644)
}

// newVideoTestService 准备一个带侧车文件的测试服务
func newVideoTestService(t *testing.T, media MediaProcessor, storyID string, storyData *story.StoryData, audioData *story.AudioData, imagesData *story.ImagesData) *Service {
	t.Helper()

	outputDir := t.TempDir()
	cfg := &config.Config{
		Story: config.StoryConfig{
			OutputDir:        outputDir,
			SegmentMaxLen:    500,
			ImagesPerChapter: 3,
		},
		Video: config.VideoConfig{Width: 1280, Height: 720, FPS: 30},
	}

	runDir := filepath.Join(outputDir, storyID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, data := range map[string]any{
		storyDataFile:  storyData,
		audioDataFile:  audioData,
		imagesDataFile: imagesData,
	} {
		if data == nil {
			continue
		}
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(runDir, name), raw, 0644); err != nil {
			t.Fatal(err)
		}
	}

	return NewService(cfg, Options{Media: media})
}

// twoChapterFixture 两个正常章节的侧车数据
// 音频和插图都落盘为占位文件，路径真实存在
func twoChapterFixture(t *testing.T, storyID string) (*story.StoryData, *story.AudioData, *story.ImagesData) {
	t.Helper()

	mediaDir := t.TempDir()
	writeMedia := func(name string) string {
		path := filepath.Join(mediaDir, name)
		if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	storyData := &story.StoryData{
		StoryID: storyID,
		Title:   "测试故事",
		Chapters: []story.Chapter{
			{Num: 1, Title: "第一章", Content: "第一章内容"},
			{Num: 2, Title: "第二章", Content: "第二章内容"},
		},
	}

	audioData := &story.AudioData{StoryID: storyID}
	imagesData := &story.ImagesData{StoryID: storyID}
	for num := 1; num <= 2; num++ {
		audioData.Chapters = append(audioData.Chapters, story.ChapterAudio{
			ChapterNum: num,
			Segments: []story.AudioSegment{
				{Index: 0, Text: "段落一", AudioPath: writeMedia(fmt.Sprintf("ch%d_seg0.mp3", num)), Duration: 4.0},
				{Index: 1, Text: "段落二", AudioPath: writeMedia(fmt.Sprintf("ch%d_seg1.mp3", num)), Duration: 6.0},
			},
			FullAudio: writeMedia(fmt.Sprintf("ch%d_full.mp3", num)),
		})
		imagesData.Chapters = append(imagesData.Chapters, story.ChapterImages{
			ChapterNum: num,
			Images: []story.ImageAsset{
				{ChapterNum: num, Index: 0, Path: writeMedia(fmt.Sprintf("ch%d_img0.jpeg", num))},
				{ChapterNum: num, Index: 1, Path: writeMedia(fmt.Sprintf("ch%d_img1.jpeg", num))},
			},
		})
	}
	return storyData, audioData, imagesData
}

func renderStateOf(renders []story.ChapterRender, chapterNum int) story.RenderState {
	for _, r := range renders {
		if r.ChapterNum == chapterNum {
			return r.State
		}
	}
	return ""
}

func TestGenerateVideo(t *testing.T) {
	ctx := context.Background()
	const storyID = "story-test-001"

	Convey("正常渲染两个章节", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)
		svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

		result, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldBeNil)
		So(result.StoryID, ShouldEqual, storyID)
		So(result.ChapterVideos, ShouldHaveLength, 2)
		So(result.FullVideo, ShouldNotBeEmpty)

		Convey("所有章节进入 rendered 终态", func() {
			So(result.Renders, ShouldHaveLength, 2)
			for _, r := range result.Renders {
				So(r.State, ShouldEqual, story.RenderStateRendered)
				So(r.State.Terminal(), ShouldBeTrue)
			}
		})

		Convey("章节视频按章节号升序", func() {
			So(result.ChapterVideos[0].ChapterNum, ShouldEqual, 1)
			So(result.ChapterVideos[1].ChapterNum, ShouldEqual, 2)
		})

		Convey("video_data.json 侧车文件写入", func() {
			raw, err := os.ReadFile(filepath.Join(svc.runDir(storyID), videoDataFile))
			So(err, ShouldBeNil)

			var sidecar story.VideoResult
			So(json.Unmarshal(raw, &sidecar), ShouldBeNil)
			So(sidecar.StoryID, ShouldEqual, storyID)
			So(sidecar.ChapterVideos, ShouldHaveLength, 2)
		})
	})

	Convey("单章渲染失败不影响其他章节", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)
		media := &fakeMedia{failClipSubstr: "ch2_img"}
		svc := newVideoTestService(t, media, storyID, storyData, audioData, imagesData)

		result, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldBeNil)

		So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateRendered)
		So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateSkippedRenderError)

		Convey("全片只包含成功章节", func() {
			So(result.ChapterVideos, ShouldHaveLength, 1)
			So(result.ChapterVideos[0].ChapterNum, ShouldEqual, 1)
			So(result.FullVideo, ShouldNotBeEmpty)
		})
	})

	Convey("音轨合成失败进入 skipped_render_error", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)
		media := &fakeMedia{failMuxSubstr: "chapter_001.mp4"}
		svc := newVideoTestService(t, media, storyID, storyData, audioData, imagesData)

		result, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldBeNil)
		So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateSkippedRenderError)
		So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateRendered)
	})

	Convey("缺少媒体的章节跳过", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)

		Convey("没有音频段进入 skipped_no_media", func() {
			audioData.Chapters[0].Segments = nil
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateSkippedNoMedia)
			So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateRendered)
		})

		Convey("没有插图进入 skipped_no_media", func() {
			imagesData.Chapters[1].Images = nil
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateRendered)
			So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateSkippedNoMedia)
		})
	})

	Convey("侧车里记录但文件已缺失的媒体被剔除", t, func() {
		Convey("部分插图文件缺失时用剩余插图渲染", func() {
			storyData, audioData, imagesData := twoChapterFixture(t, storyID)
			So(os.Remove(imagesData.Chapters[0].Images[0].Path), ShouldBeNil)
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateRendered)
			So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateRendered)
		})

		Convey("全部插图文件缺失进入 skipped_no_media", func() {
			storyData, audioData, imagesData := twoChapterFixture(t, storyID)
			for _, img := range imagesData.Chapters[1].Images {
				So(os.Remove(img.Path), ShouldBeNil)
			}
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateRendered)
			So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateSkippedNoMedia)
		})

		Convey("整章音频文件缺失时改用分段合并", func() {
			storyData, audioData, imagesData := twoChapterFixture(t, storyID)
			So(os.Remove(audioData.Chapters[0].FullAudio), ShouldBeNil)
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateRendered)

			track := filepath.Join(svc.runDir(storyID), "videos", "chapter_001_track.mp3")
			_, statErr := os.Stat(track)
			So(statErr, ShouldBeNil)
		})

		Convey("音频段文件全部缺失进入 skipped_no_media", func() {
			storyData, audioData, imagesData := twoChapterFixture(t, storyID)
			for _, seg := range audioData.Chapters[0].Segments {
				So(os.Remove(seg.AudioPath), ShouldBeNil)
			}
			svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, audioData, imagesData)

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateSkippedNoMedia)
			So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateRendered)
		})
	})

	Convey("音轨现场合并失败进入 skipped_render_error", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)
		So(os.Remove(audioData.Chapters[0].FullAudio), ShouldBeNil)
		media := &fakeMedia{failConcatAudios: true}
		svc := newVideoTestService(t, media, storyID, storyData, audioData, imagesData)

		result, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldBeNil)
		So(renderStateOf(result.Renders, 1), ShouldEqual, story.RenderStateSkippedRenderError)
		So(renderStateOf(result.Renders, 2), ShouldEqual, story.RenderStateRendered)
	})

	Convey("不可读的章节视频不纳入全片", t, func() {
		storyData, audioData, imagesData := twoChapterFixture(t, storyID)

		Convey("部分不可读时全片仍然合并", func() {
			media := &fakeMedia{unreadableVideo: map[string]bool{}}
			svc := newVideoTestService(t, media, storyID, storyData, audioData, imagesData)
			media.unreadableVideo[filepath.Join(svc.runDir(storyID), "videos", "chapter_001.mp4")] = true

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(result.ChapterVideos, ShouldHaveLength, 2)
			So(result.FullVideo, ShouldNotBeEmpty)
		})

		Convey("全部不可读时全片为空且不报错", func() {
			media := &fakeMedia{unreadableVideo: map[string]bool{}}
			svc := newVideoTestService(t, media, storyID, storyData, audioData, imagesData)
			for num := 1; num <= 2; num++ {
				path := filepath.Join(svc.runDir(storyID), "videos", fmt.Sprintf("chapter_%03d.mp4", num))
				media.unreadableVideo[path] = true
			}

			result, err := svc.GenerateVideo(ctx, storyID)
			So(err, ShouldBeNil)
			So(result.FullVideo, ShouldBeEmpty)
			So(result.ChapterVideos, ShouldHaveLength, 2)
		})
	})

	Convey("空故事返回错误", t, func() {
		storyData := &story.StoryData{StoryID: storyID, Title: "空故事"}
		svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData,
			&story.AudioData{StoryID: storyID}, &story.ImagesData{StoryID: storyID})

		_, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldNotBeNil)
	})

	Convey("缺少音频侧车文件返回错误", t, func() {
		storyData, _, imagesData := twoChapterFixture(t, storyID)
		svc := newVideoTestService(t, &fakeMedia{}, storyID, storyData, nil, imagesData)

		_, err := svc.GenerateVideo(ctx, storyID)
		So(err, ShouldNotBeNil)
	})

	Convey("不存在的故事返回 ErrStoryNotFound", t, func() {
		svc := newVideoTestService(t, &fakeMedia{}, storyID, nil, nil, nil)

		_, err := svc.GenerateVideo(ctx, "missing-story")
		So(errors.Is(err, ErrStoryNotFound), ShouldBeTrue)
	})
}
