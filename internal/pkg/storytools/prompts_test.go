package storytools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitChapterOutput(t *testing.T) {
	Convey("第一行为标题，其余为正文", t, func() {
		title, content := SplitChapterOutput("第一章 起风了\n夜色渐深，风从山口吹来。\n少年收紧了衣领。")
		So(title, ShouldEqual, "第一章 起风了")
		So(content, ShouldEqual, "夜色渐深，风从山口吹来。\n少年收紧了衣领。")
	})

	Convey("标题上的 markdown 标记被去掉", t, func() {
		title, _ := SplitChapterOutput("## 第二章 归途\n正文内容。")
		So(title, ShouldEqual, "第二章 归途")
	})

	Convey("没有换行时标题为空", t, func() {
		title, content := SplitChapterOutput("只有一行正文")
		So(title, ShouldBeEmpty)
		So(content, ShouldEqual, "只有一行正文")
	})
}

func TestParseStringList(t *testing.T) {
	Convey("解析 JSON 字符串数组", t, func() {
		items, err := ParseStringList(`["场景一", "场景二", "场景三"]`)
		So(err, ShouldBeNil)
		So(items, ShouldResemble, []string{"场景一", "场景二", "场景三"})
	})

	Convey("容忍 markdown 代码块包裹", t, func() {
		items, err := ParseStringList("```json\n[\"少年在河边\"]\n```")
		So(err, ShouldBeNil)
		So(items, ShouldResemble, []string{"少年在河边"})
	})

	Convey("空白项被丢弃", t, func() {
		items, err := ParseStringList(`["场景一", "  ", ""]`)
		So(err, ShouldBeNil)
		So(items, ShouldResemble, []string{"场景一"})
	})

	Convey("非数组输出返回错误", t, func() {
		_, err := ParseStringList(`{"scene": "不是数组"}`)
		So(err, ShouldNotBeNil)
	})
}

func TestBuildChapterPrompt(t *testing.T) {
	Convey("章节提示词包含概念和章节信息", t, func() {
		prompt := BuildChapterPrompt("末日后的图书馆", 2, 5, 1000, "上一章的结尾内容")

		So(prompt, ShouldContainSubstring, "末日后的图书馆")
		So(prompt, ShouldContainSubstring, "第 2 章")
		So(prompt, ShouldContainSubstring, "共 5 章")
		So(prompt, ShouldContainSubstring, "上一章的结尾内容")
	})

	Convey("第一章不带上一章结尾", t, func() {
		prompt := BuildChapterPrompt("末日后的图书馆", 1, 5, 1000, "")
		So(prompt, ShouldNotContainSubstring, "上一章结尾")
	})
}
