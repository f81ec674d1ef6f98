package storytools

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoUsableMedia 没有可用的音频段或图片，无法分配时间轴
	ErrNoUsableMedia = errors.New("no usable media for timeline allocation")
)

// AllocationMode 时间轴分配模式
type AllocationMode string

const (
	// ModeEvenSplit 图片数不少于音频段数：每段按时长占比分到多张图，段内均分
	ModeEvenSplit AllocationMode = "even_split"
	// ModeNearestImage 音频段数多于图片数：每段映射到位置最近的一张图
	ModeNearestImage AllocationMode = "nearest_image"
)

// Placement 一张图片在时间轴上的展示区间
type Placement struct {
	ImagePath string  `json:"image_path"`
	StartTime float64 `json:"start_time"` // 起始时间（秒）
	Duration  float64 `json:"duration"`   // 展示时长（秒）
}

// Allocation 一个章节的完整时间轴分配
// Placements 按时间顺序排列，无缝隙无重叠，总时长等于音频总时长
type Allocation struct {
	Mode       AllocationMode `json:"mode"`
	Placements []Placement    `json:"placements"`
	Total      float64        `json:"total"` // 音频总时长（秒）
}

// AllocateTimeline 把章节插图分配到旁白音频段的时间轴上
// segDurations 为各音频段时长（按段落顺序），images 为章节插图路径（按生成顺序）
func AllocateTimeline(segDurations []float64, images []string) (*Allocation, error) {
	numSegs := len(segDurations)
	numImages := len(images)

	if numSegs == 0 || numImages == 0 {
		return nil, ErrNoUsableMedia
	}

	var total float64
	for _, d := range segDurations {
		if d < 0 {
			return nil, ErrNoUsableMedia
		}
		total += d
	}
	if total <= 0 {
		return nil, ErrNoUsableMedia
	}

	alloc := &Allocation{Total: total}

	if numSegs <= numImages {
		alloc.Mode = ModeEvenSplit
		alloc.Placements = allocateEvenSplit(segDurations, images, total)
	} else {
		alloc.Mode = ModeNearestImage
		alloc.Placements = allocateNearestImage(segDurations, images)
	}

	log.Debug().
		Str("mode", string(alloc.Mode)).
		Int("segments", numSegs).
		Int("images", numImages).
		Int("placements", len(alloc.Placements)).
		Float64("total", total).
		Msg("时间轴分配完成")

	return alloc, nil
}

// allocateEvenSplit 段数不超过图片数时的分配
// 每段分到的图片数与该段时长占比成正比（至少一张），段内时长均分，
// 最后一片吸收舍入误差，保证每段分片之和精确等于段时长
func allocateEvenSplit(segDurations []float64, images []string, total float64) []Placement {
	numSegs := len(segDurations)
	numImages := len(images)

	var placements []Placement
	var cursor float64

	for i, dur := range segDurations {
		k := int(math.Round(dur / total * float64(numImages)))
		if k < 1 {
			k = 1
		}

		startIdx := i * numImages / numSegs
		slice := dur / float64(k)

		for j := 0; j < k; j++ {
			imgIdx := startIdx + j
			if imgIdx > numImages-1 {
				imgIdx = numImages - 1
			}

			d := slice
			if j == k-1 {
				// 最后一片吸收浮点舍入误差
				d = dur - slice*float64(k-1)
			}

			placements = append(placements, Placement{
				ImagePath: images[imgIdx],
				StartTime: cursor,
				Duration:  d,
			})
			cursor += d
		}
	}

	return placements
}

// allocateNearestImage 段数多于图片数时的分配
// 每段整段展示按位置比例映射到的那张图片
func allocateNearestImage(segDurations []float64, images []string) []Placement {
	numSegs := len(segDurations)
	numImages := len(images)

	placements := make([]Placement, 0, numSegs)
	var cursor float64

	for i, dur := range segDurations {
		imgIdx := i * numImages / numSegs
		if imgIdx > numImages-1 {
			imgIdx = numImages - 1
		}

		placements = append(placements, Placement{
			ImagePath: images[imgIdx],
			StartTime: cursor,
			Duration:  dur,
		})
		cursor += dur
	}

	return placements
}
