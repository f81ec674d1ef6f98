package storytools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStoryContext(t *testing.T) {
	Convey("解析标准 JSON 输出", t, func() {
		output := `{
			"characters": [
				{"name": "阿林", "description": "黑色短发的少年，穿灰色风衣"},
				{"name": "老周", "description": "白胡子老人，拄着木杖"}
			],
			"setting": "民国时期的江南小镇",
			"style": "水墨画风格"
		}`

		ctx, err := ParseStoryContext(output)
		So(err, ShouldBeNil)
		So(ctx.Characters, ShouldHaveLength, 2)
		So(ctx.Setting, ShouldEqual, "民国时期的江南小镇")
		So(ctx.Style, ShouldEqual, "水墨画风格")

		Convey("按名字查找角色", func() {
			So(ctx.CharacterByName("阿林"), ShouldEqual, "黑色短发的少年，穿灰色风衣")
			So(ctx.CharacterByName("不存在"), ShouldBeEmpty)
		})
	})

	Convey("容忍 markdown 代码块包裹", t, func() {
		output := "```json\n{\"characters\": [], \"setting\": \"未来都市\", \"style\": \"赛博朋克\"}\n```"

		ctx, err := ParseStoryContext(output)
		So(err, ShouldBeNil)
		So(ctx.Setting, ShouldEqual, "未来都市")
	})

	Convey("非法 JSON 返回错误", t, func() {
		_, err := ParseStoryContext("这不是 JSON")
		So(err, ShouldNotBeNil)
	})
}

func TestBuildIllustrationPrompt(t *testing.T) {
	storyCtx := StoryContext{
		Characters: []CharacterProfile{
			{Name: "阿林", Description: "黑色短发的少年"},
			{Name: "老周", Description: "白胡子老人"},
		},
		Setting: "民国时期的江南小镇",
		Style:   "水墨画风格",
	}

	Convey("场景中出现的角色描述被注入提示词", t, func() {
		prompt := BuildIllustrationPrompt(storyCtx, "阿林在河边洗脸")
		composed := prompt.Compose()

		So(composed, ShouldContainSubstring, "阿林在河边洗脸")
		So(composed, ShouldContainSubstring, "黑色短发的少年")

		Convey("未出场角色不注入", func() {
			So(composed, ShouldNotContainSubstring, "白胡子老人")
		})
	})

	Convey("多个角色同时出场", t, func() {
		composed := BuildIllustrationPrompt(storyCtx, "阿林和老周在桥上对话").Compose()

		So(composed, ShouldContainSubstring, "黑色短发的少年")
		So(composed, ShouldContainSubstring, "白胡子老人")
	})

	Convey("设定与风格始终进入提示词", t, func() {
		composed := BuildIllustrationPrompt(storyCtx, "一条空荡的街道").Compose()

		So(composed, ShouldContainSubstring, "民国时期的江南小镇")
		So(composed, ShouldContainSubstring, "水墨画风格")
		So(strings.HasPrefix(composed, "水墨画风格"), ShouldBeTrue)
	})

	Convey("空上下文只保留场景描述", t, func() {
		composed := BuildIllustrationPrompt(StoryContext{}, "一条空荡的街道").Compose()
		So(composed, ShouldEqual, "一条空荡的街道")
	})
}

func TestIllustrationPromptCompose(t *testing.T) {
	Convey("槽位按固定顺序拼接，空槽位跳过", t, func() {
		p := IllustrationPrompt{
			Subject:  "少年站在桥头",
			Style:    "油画风格",
			Lighting: "黄昏逆光",
		}

		So(p.Compose(), ShouldEqual, "油画风格。少年站在桥头。黄昏逆光")
	})

	Convey("全空槽位返回空串", t, func() {
		So(IllustrationPrompt{}.Compose(), ShouldBeEmpty)
	})
}
