package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/postsmith/internal/service"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of posts and write them as a CSV content schedule",
	Long: `generate runs the research, write, format and analytics stages once per post
and writes the results to a CSV file. An empty --tone uses the platform's
default tone. Pass --out - to write the CSV to stdout.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("platform", "", "target platform (instagram, linkedin, blog, article)")
	generateCmd.Flags().String("goal", "engagement", "optimization goal (engagement, visibility, branding)")
	generateCmd.Flags().String("topic", "", "topic to write about")
	generateCmd.Flags().String("tone", "", "tone (professional, casual, humorous); defaults to the platform tone")
	generateCmd.Flags().Int("count", 1, "number of posts to generate (1-50)")
	generateCmd.Flags().String("style-file", "", "past posts (.csv with a content column, or one post per line) to match")
	generateCmd.Flags().String("out", service.ExportFilename, "output CSV path, or - for stdout")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	platform, _ := flags.GetString("platform")
	goal, _ := flags.GetString("goal")
	topic, _ := flags.GetString("topic")
	tone, _ := flags.GetString("tone")
	count, _ := flags.GetInt("count")
	styleFile, _ := flags.GetString("style-file")
	out, _ := flags.GetString("out")

	platform = strings.TrimSpace(platform)
	goal = strings.TrimSpace(goal)
	tone = strings.TrimSpace(tone)
	if tone == "" {
		if rule, err := service.LookupPlatform(platform); err == nil {
			tone = rule.DefaultTone
		}
	}

	if messages := service.ValidateInputs(platform, goal, tone, topic, strconv.Itoa(count)); len(messages) > 0 {
		for _, msg := range messages {
			fmt.Fprintln(os.Stderr, msg)
		}
		return &service.ValidationError{Messages: messages}
	}

	application, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	var persona *service.Persona
	if styleFile != "" {
		persona = analyzeStyleFile(application, styleFile)
	}

	req := service.GenerationRequest{
		Platform: platform,
		Goal:     goal,
		Tone:     tone,
		Topic:    strings.TrimSpace(topic),
		Persona:  persona,
	}

	batch, err := application.content.GenerateBatch(cmd.Context(), req, count)
	if err != nil {
		return err
	}
	if err := application.ledger.Record(cmd.Context(), service.RunSourceCLI, req, batch); err != nil {
		application.logger.WithError(err).Warn("Failed to record generation run")
	}

	if err := writeSchedule(out, cmd.OutOrStdout(), batch.Records); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %d posts to %s\n", len(batch.Records), out)
	}
	return nil
}

func analyzeStyleFile(application *app, path string) *service.Persona {
	file, err := os.Open(path)
	if err != nil {
		application.logger.WithError(err).WithField("file", path).Warn("Cannot open style file")
		return nil
	}
	defer file.Close()
	return application.styles.Analyze(path, file)
}

func writeSchedule(out string, stdout io.Writer, records []service.ExportRecord) error {
	if out == "-" {
		return service.WriteCSV(stdout, records)
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := service.WriteCSV(file, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
