package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// ffprobe -of json 的真实输出，冒号后带空格，时长是字符串
const videoProbeJSON = `{
    "streams": [
        {
            "width": 1280,
            "height": 720,
            "r_frame_rate": "30000/1001"
        }
    ],
    "format": {
        "duration": "12.345000"
    }
}`

const audioProbeJSON = `{
    "format": {
        "duration": "7.250000"
    }
}`

func TestParseProbeOutput(t *testing.T) {
	Convey("解析视频探测输出", t, func() {
		info, err := parseVideoInfo([]byte(videoProbeJSON))
		So(err, ShouldBeNil)
		So(info.Width, ShouldEqual, 1280)
		So(info.Height, ShouldEqual, 720)
		So(info.Duration, ShouldAlmostEqual, 12.345, 1e-9)
		So(info.FPS, ShouldAlmostEqual, 30000.0/1001.0, 1e-9)
	})

	Convey("解析音频探测输出", t, func() {
		info, err := parseAudioInfo([]byte(audioProbeJSON))
		So(err, ShouldBeNil)
		So(info.Duration, ShouldAlmostEqual, 7.25, 1e-9)
	})

	Convey("缺少 format.duration 时时长为零", t, func() {
		info, err := parseVideoInfo([]byte(`{"streams": [{"width": 640, "height": 480}]}`))
		So(err, ShouldBeNil)
		So(info.Duration, ShouldEqual, 0)
		So(info.Width, ShouldEqual, 640)
	})

	Convey("非法帧率不影响其他字段", t, func() {
		info, err := parseVideoInfo([]byte(`{
            "streams": [{"width": 1280, "height": 720, "r_frame_rate": "0/0"}],
            "format": {"duration": "3.000000"}
        }`))
		So(err, ShouldBeNil)
		So(info.FPS, ShouldEqual, 0)
		So(info.Duration, ShouldAlmostEqual, 3.0, 1e-9)
	})

	Convey("非法 JSON 返回错误", t, func() {
		_, err := parseVideoInfo([]byte("not json"))
		So(err, ShouldNotBeNil)

		_, err = parseAudioInfo([]byte("not json"))
		So(err, ShouldNotBeNil)
	})

	Convey("非法时长字符串返回错误", t, func() {
		_, err := parseAudioInfo([]byte(`{"format": {"duration": "N/A"}}`))
		So(err, ShouldNotBeNil)
	})
}

func TestGetDurationWithFakeProbe(t *testing.T) {
	// 用输出固定 JSON 的脚本替代 ffprobe，验证整条探测链路
	fakeProbe := func(t *testing.T, output string) {
		t.Helper()
		script := filepath.Join(t.TempDir(), "ffprobe")
		content := "#!/bin/sh\ncat <<'EOF'\n" + output + "\nEOF\n"
		if err := os.WriteFile(script, []byte(content), 0755); err != nil {
			t.Fatal(err)
		}
		t.Setenv("FFPROBE_PATH", script)
	}

	Convey("从真实格式的探测输出读出音频时长", t, func() {
		fakeProbe(t, audioProbeJSON)
		c := NewClient()

		duration, err := c.GetAudioDuration(context.Background(), "whatever.mp3")
		So(err, ShouldBeNil)
		So(duration, ShouldAlmostEqual, 7.25, 1e-9)
	})

	Convey("从真实格式的探测输出读出视频时长", t, func() {
		fakeProbe(t, videoProbeJSON)
		c := NewClient()

		duration, err := c.GetVideoDuration(context.Background(), "whatever.mp4")
		So(err, ShouldBeNil)
		So(duration, ShouldAlmostEqual, 12.345, 1e-9)
	})

	Convey("没有时长的输出报错", t, func() {
		fakeProbe(t, `{"format": {}}`)
		c := NewClient()

		_, err := c.GetAudioDuration(context.Background(), "whatever.mp3")
		So(err, ShouldNotBeNil)
	})
}
