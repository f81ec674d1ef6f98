package storytools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSpeechSegmenter(t *testing.T) {
	Convey("构造后的分割器立即可用", t, func() {
		s := NewSpeechSegmenter(100)
		So(s, ShouldNotBeNil)
		So(s.MaxLength(), ShouldEqual, 100)
		So(s.Split("初始化后即可切分文本。"), ShouldHaveLength, 1)
	})

	Convey("短文本不切分", t, func() {
		s := NewSpeechSegmenter(50)

		segments := s.Split("这是一个很短的段落。")
		So(segments, ShouldHaveLength, 1)
		So(segments[0], ShouldEqual, "这是一个很短的段落。")
	})

	Convey("空文本返回 nil", t, func() {
		s := NewSpeechSegmenter(50)

		So(s.Split(""), ShouldBeNil)
		So(s.Split("   \n\t  "), ShouldBeNil)
	})

	Convey("优先在句子边界切分", t, func() {
		s := NewSpeechSegmenter(20)

		text := "第一句话在这里。第二句话跟在后面。第三句话结束全文。"
		segments := s.Split(text)

		So(len(segments), ShouldBeGreaterThan, 1)
		Convey("每段都以句子结束符结尾", func() {
			for _, seg := range segments {
				runes := []rune(seg)
				So(isSentenceEnding(runes[len(runes)-1]), ShouldBeTrue)
			}
		})
	})

	Convey("英文文本在空白处切分", t, func() {
		s := NewSpeechSegmenter(30)

		text := "the quick brown fox jumps over the lazy dog again and again"
		segments := s.Split(text)

		So(len(segments), ShouldBeGreaterThan, 1)
		Convey("切分不会截断单词", func() {
			for _, seg := range segments {
				So(strings.HasPrefix(seg, " "), ShouldBeFalse)
				So(strings.HasSuffix(seg, " "), ShouldBeFalse)
			}
			rejoined := strings.Join(segments, " ")
			So(rejoined, ShouldEqual, text)
		})
	})

	Convey("每段长度不超过上限", t, func() {
		s := NewSpeechSegmenter(10)

		// 没有任何标点和空白的长文本，触发词边界/硬切
		text := strings.Repeat("连续中文字符没有标点", 10)
		segments := s.Split(text)

		So(len(segments), ShouldBeGreaterThan, 1)
		for _, seg := range segments {
			So(len([]rune(seg)), ShouldBeLessThanOrEqualTo, s.MaxLength())
		}

		Convey("切分不丢失任何字符", func() {
			So(strings.Join(segments, ""), ShouldEqual, text)
		})
	})

	Convey("跨段落的空白被丢弃", t, func() {
		s := NewSpeechSegmenter(15)

		text := "第一句到此结束。\n\n  第二句从这里开始。"
		segments := s.Split(text)

		for _, seg := range segments {
			So(seg, ShouldNotBeEmpty)
			So(strings.TrimSpace(seg), ShouldEqual, seg)
		}
	})

	Convey("非法上限回退到默认值", t, func() {
		So(NewSpeechSegmenter(0).MaxLength(), ShouldEqual, 500)
		So(NewSpeechSegmenter(-10).MaxLength(), ShouldEqual, 500)
	})
}
