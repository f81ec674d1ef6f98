package storytools

import (
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// sentenceEndings 句子结束符（中英文）
var sentenceEndings = []rune{'。', '！', '？', '.', '!', '?'}

// SpeechSegmenter 旁白文本分割器
// 将章节文本按最大长度贪心切分为适合 TTS 的段落，
// 优先在句子边界断开，其次空白，再次词边界，最后硬切
type SpeechSegmenter struct {
	maxLength int            // 每段最大字符数（默认500）
	segmenter *gse.Segmenter // gse 分词器
}

// NewSpeechSegmenter 创建旁白文本分割器实例
func NewSpeechSegmenter(maxLength int) *SpeechSegmenter {
	if maxLength <= 0 {
		maxLength = 500 // 默认值
	}

	// 初始化 gse 分词器，失败时降级到空白/硬切分割
	var seg *gse.Segmenter
	if segmenter, err := gse.New(); err == nil {
		seg = &segmenter
	}

	return &SpeechSegmenter{
		maxLength: maxLength,
		segmenter: seg,
	}
}

// Split 将文本切分为不超过 maxLength 的段落
// 空文本返回 nil；每轮至少前进一个字符，保证终止
func (s *SpeechSegmenter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var segments []string
	for len(runes) > 0 {
		if len(runes) <= s.maxLength {
			if seg := strings.TrimSpace(string(runes)); seg != "" {
				segments = append(segments, seg)
			}
			break
		}

		window := runes[:s.maxLength]

		// 1. 句子边界：窗口内最后一个句子结束符
		cut := lastIndexFunc(window, isSentenceEnding)

		// 2. 空白边界
		if cut < 0 {
			cut = lastIndexFunc(window, unicode.IsSpace)
		}

		// 3. 词边界（CJK 无空白文本）
		if cut < 0 {
			cut = s.lastWordBoundary(window)
		}

		// 4. 硬切
		if cut < 0 {
			cut = s.maxLength - 1
		}

		if seg := strings.TrimSpace(string(runes[:cut+1])); seg != "" {
			segments = append(segments, seg)
		}
		runes = runes[cut+1:]

		// 跳过段落间的空白
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}

	return segments
}

// MaxLength 返回分割长度上限
func (s *SpeechSegmenter) MaxLength() int {
	return s.maxLength
}

// lastWordBoundary 使用 gse 分词找到窗口内最后一个完整词的结尾
// 返回该词最后一个字符的下标，找不到返回 -1
func (s *SpeechSegmenter) lastWordBoundary(window []rune) int {
	if s.segmenter == nil {
		return -1
	}

	words := s.segmenter.Cut(string(window), true)
	pos := 0
	last := -1
	for _, word := range words {
		wl := len([]rune(word))
		if pos+wl >= len(window) {
			break
		}
		pos += wl
		last = pos - 1
	}
	return last
}

func isSentenceEnding(r rune) bool {
	for _, e := range sentenceEndings {
		if r == e {
			return true
		}
	}
	return false
}

// lastIndexFunc 返回满足条件的最后一个字符下标，找不到返回 -1
func lastIndexFunc(runes []rune, f func(rune) bool) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if f(runes[i]) {
			return i
		}
	}
	return -1
}
