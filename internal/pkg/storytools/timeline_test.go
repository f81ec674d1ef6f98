package storytools

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// placementsPartition 校验分配结果无缝隙无重叠且总时长正确
func placementsPartition(placements []Placement, total float64) bool {
	cursor := 0.0
	for _, p := range placements {
		if math.Abs(p.StartTime-cursor) > 1e-9 {
			return false
		}
		if p.Duration < 0 {
			return false
		}
		cursor += p.Duration
	}
	return math.Abs(cursor-total) < 1e-9
}

func TestAllocateTimeline(t *testing.T) {
	images := []string{"img0.jpeg", "img1.jpeg", "img2.jpeg", "img3.jpeg"}

	Convey("图片数不少于段数时使用 even_split 模式", t, func() {
		durations := []float64{10.0, 10.0}

		alloc, err := AllocateTimeline(durations, images)
		So(err, ShouldBeNil)
		So(alloc.Mode, ShouldEqual, ModeEvenSplit)
		So(alloc.Total, ShouldAlmostEqual, 20.0)

		Convey("分配结果无缝隙无重叠，总时长等于音频总时长", func() {
			So(placementsPartition(alloc.Placements, 20.0), ShouldBeTrue)
		})

		Convey("每段分到的图片数与时长占比成正比", func() {
			// 两段各占一半，各分到两张图
			So(alloc.Placements, ShouldHaveLength, 4)
			So(alloc.Placements[0].ImagePath, ShouldEqual, "img0.jpeg")
			So(alloc.Placements[1].ImagePath, ShouldEqual, "img1.jpeg")
			So(alloc.Placements[2].ImagePath, ShouldEqual, "img2.jpeg")
			So(alloc.Placements[3].ImagePath, ShouldEqual, "img3.jpeg")
		})
	})

	Convey("even_split 模式下的边界情况", t, func() {
		Convey("极短段至少分到一张图", func() {
			durations := []float64{0.1, 19.9}

			alloc, err := AllocateTimeline(durations, images)
			So(err, ShouldBeNil)
			So(alloc.Mode, ShouldEqual, ModeEvenSplit)
			So(placementsPartition(alloc.Placements, 20.0), ShouldBeTrue)

			// 第一段虽然占比不足半张图，仍展示一张
			So(alloc.Placements[0].ImagePath, ShouldEqual, "img0.jpeg")
			So(alloc.Placements[0].Duration, ShouldAlmostEqual, 0.1)
		})

		Convey("图片下标越界时钳制到最后一张", func() {
			// 第二段时长占比大，请求的图片数超过剩余图片
			durations := []float64{2.0, 18.0}

			alloc, err := AllocateTimeline(durations, []string{"a.jpeg", "b.jpeg"})
			So(err, ShouldBeNil)
			So(placementsPartition(alloc.Placements, 20.0), ShouldBeTrue)
			for _, p := range alloc.Placements {
				So(p.ImagePath, ShouldBeIn, "a.jpeg", "b.jpeg")
			}
		})

		Convey("最后一片吸收浮点舍入误差", func() {
			// 10/3 无法精确表示，分片之和仍须等于段时长
			durations := []float64{10.0}

			alloc, err := AllocateTimeline(durations, []string{"a.jpeg", "b.jpeg", "c.jpeg"})
			So(err, ShouldBeNil)
			So(alloc.Placements, ShouldHaveLength, 3)
			So(placementsPartition(alloc.Placements, 10.0), ShouldBeTrue)
		})

		Convey("单段单图", func() {
			alloc, err := AllocateTimeline([]float64{7.5}, []string{"only.jpeg"})
			So(err, ShouldBeNil)
			So(alloc.Placements, ShouldHaveLength, 1)
			So(alloc.Placements[0].ImagePath, ShouldEqual, "only.jpeg")
			So(alloc.Placements[0].Duration, ShouldAlmostEqual, 7.5)
		})
	})

	Convey("段数多于图片数时使用 nearest_image 模式", t, func() {
		durations := []float64{3.0, 4.0, 5.0, 6.0, 7.0, 8.0}
		twoImages := []string{"first.jpeg", "second.jpeg"}

		alloc, err := AllocateTimeline(durations, twoImages)
		So(err, ShouldBeNil)
		So(alloc.Mode, ShouldEqual, ModeNearestImage)
		So(alloc.Placements, ShouldHaveLength, 6)

		Convey("每段整段展示映射到的图片", func() {
			for i, p := range alloc.Placements {
				So(p.Duration, ShouldAlmostEqual, durations[i])
			}
		})

		Convey("前半段映射到第一张图，后半段映射到第二张", func() {
			So(alloc.Placements[0].ImagePath, ShouldEqual, "first.jpeg")
			So(alloc.Placements[2].ImagePath, ShouldEqual, "first.jpeg")
			So(alloc.Placements[3].ImagePath, ShouldEqual, "second.jpeg")
			So(alloc.Placements[5].ImagePath, ShouldEqual, "second.jpeg")
		})

		Convey("分配结果无缝隙无重叠", func() {
			So(placementsPartition(alloc.Placements, 33.0), ShouldBeTrue)
		})
	})

	Convey("无可用媒体时返回 ErrNoUsableMedia", t, func() {
		Convey("没有音频段", func() {
			_, err := AllocateTimeline(nil, images)
			So(err, ShouldEqual, ErrNoUsableMedia)
		})

		Convey("没有图片", func() {
			_, err := AllocateTimeline([]float64{5.0}, nil)
			So(err, ShouldEqual, ErrNoUsableMedia)
		})

		Convey("总时长为零", func() {
			_, err := AllocateTimeline([]float64{0, 0}, images)
			So(err, ShouldEqual, ErrNoUsableMedia)
		})

		Convey("存在负时长", func() {
			_, err := AllocateTimeline([]float64{5.0, -1.0}, images)
			So(err, ShouldEqual, ErrNoUsableMedia)
		})
	})
}
