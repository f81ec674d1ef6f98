package story

// AudioSegment 一段旁白音频
type AudioSegment struct {
	Index     int     `json:"index"`      // 段落序号（从0开始，与文本切分顺序一致）
	Text      string  `json:"text"`       // 对应的文本段
	AudioPath string  `json:"audio_path"` // 音频文件路径（mp3）
	Duration  float64 `json:"duration"`   // 时长（秒）
}

// ChapterAudio 一个章节的全部旁白音频
type ChapterAudio struct {
	ChapterNum int            `json:"chapter_num"`
	Segments   []AudioSegment `json:"segments"`             // 按段落顺序
	FullAudio  string         `json:"full_audio,omitempty"` // 整章合并音频路径（合并失败时为空）
}

// ImageAsset 一张章节插图
type ImageAsset struct {
	ChapterNum int    `json:"chapter_num"`
	Index      int    `json:"index"`  // 插图序号（从0开始，按生成顺序）
	Prompt     string `json:"prompt"` // 生成该图使用的提示词
	Path       string `json:"path"`   // 图片文件路径
}

// ChapterImages 一个章节的全部插图
type ChapterImages struct {
	ChapterNum int          `json:"chapter_num"`
	Images     []ImageAsset `json:"images"` // 按生成顺序
}

// StoryData story_data.json 侧车文件内容
type StoryData struct {
	StoryID  string    `json:"story_id"`
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// ImagesData images_data.json 侧车文件内容
type ImagesData struct {
	StoryID  string          `json:"story_id"`
	Chapters []ChapterImages `json:"chapters"`
}

// AudioData audio_data.json 侧车文件内容
type AudioData struct {
	StoryID  string         `json:"story_id"`
	Chapters []ChapterAudio `json:"chapters"`
}
