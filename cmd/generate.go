package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	storysvc "fable/internal/service/story"
)

var (
	genConcept    string
	genStoryID    string
	genSkipStory  bool
	genSkipImages bool
	genSkipAudio  bool
	genSkipVideo  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full story-to-video pipeline",
	Long: `Generate a story from a concept and turn it into a narrated video.
Stages can be skipped individually; skipped stages reload their results
from the sidecar files of a previous run (requires --story-id).`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()

	flags.StringVar(&genConcept, "concept", "", "story concept to generate from")
	flags.StringVar(&genStoryID, "story-id", "", "existing story id (required when skipping the story stage)")
	flags.BoolVar(&genSkipStory, "skip-story", false, "reuse story text from a previous run")
	flags.BoolVar(&genSkipImages, "skip-images", false, "reuse illustrations from a previous run")
	flags.BoolVar(&genSkipAudio, "skip-audio", false, "reuse narration audio from a previous run")
	flags.BoolVar(&genSkipVideo, "skip-video", false, "stop before video composition")

	flags.Int("chapters", 3, "number of chapters to generate")
	flags.Int("tokens-per-chapter", 1000, "token budget per chapter")
	flags.String("output-dir", "./output", "directory for generated artifacts")

	_ = viper.BindPFlag("story.num_chapters", flags.Lookup("chapters"))
	_ = viper.BindPFlag("story.tokens_per_chapter", flags.Lookup("tokens-per-chapter"))
	_ = viper.BindPFlag("story.output_dir", flags.Lookup("output-dir"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if genSkipStory && genStoryID == "" {
		return errors.New("--skip-story requires --story-id")
	}
	if !genSkipStory && genConcept == "" {
		return errors.New("--concept is required unless --skip-story is set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	svc, cleanup, err := storysvc.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer cleanup()

	storyID := genStoryID
	if genSkipStory {
		log.Info().Str("story_id", storyID).Msg("story stage skipped, reusing existing story")
	} else {
		st, err := svc.CreateStory(ctx, storysvc.CreateStoryRequest{
			Concept:          genConcept,
			NumChapters:      cfg.Story.NumChapters,
			TokensPerChapter: cfg.Story.TokensPerChapter,
		})
		if err != nil {
			return fmt.Errorf("story generation failed: %w", err)
		}
		storyID = st.ID
		log.Info().Str("story_id", storyID).Str("title", st.Title).Int("chapters", len(st.Chapters)).Msg("story generated")
	}

	if genSkipImages {
		log.Info().Msg("image stage skipped, reusing existing illustrations")
	} else {
		if _, err := svc.GenerateImages(ctx, storyID); err != nil {
			return fmt.Errorf("image generation failed: %w", err)
		}
	}

	if genSkipAudio {
		log.Info().Msg("audio stage skipped, reusing existing narration")
	} else {
		if _, err := svc.GenerateAudio(ctx, storyID); err != nil {
			return fmt.Errorf("audio generation failed: %w", err)
		}
	}

	if genSkipVideo {
		log.Info().Msg("video stage skipped, stopping before composition")
		return nil
	}

	result, err := svc.GenerateVideo(ctx, storyID)
	if err != nil {
		return fmt.Errorf("video composition failed: %w", err)
	}

	for _, cv := range result.ChapterVideos {
		log.Info().Int("chapter", cv.ChapterNum).Str("path", cv.VideoPath).Msg("chapter video ready")
	}
	if result.FullVideo != "" {
		log.Info().Str("path", result.FullVideo).Msg("full video ready")
	} else {
		log.Warn().Msg("no full video produced")
	}
	return nil
}
