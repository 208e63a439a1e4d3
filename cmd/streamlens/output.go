package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/streamlens/streamlens/internal/analytics"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/quality"
	"github.com/streamlens/streamlens/internal/storage"
	"github.com/streamlens/streamlens/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0EA5E9"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	recommendedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#22C55E"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))
)

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		util.Errorf("failed to encode output: %v", err)
		return 1
	}
	return 0
}

func printStreamList(records []models.StreamRecord) {
	fmt.Println(titleStyle.Render("Detected Streams"))
	for i, rec := range records {
		line := fmt.Sprintf("  %d. [%s] %s", i+1, rec.Type, rec.URL)
		if rec.Quality != "" {
			line += dimStyle.Render(" (" + rec.Quality + ")")
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func printHistory(entries []storage.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println(dimStyle.Render("No streams detected yet."))
		return
	}
	fmt.Println(titleStyle.Render("Stream History"))
	for _, e := range entries {
		fmt.Printf("  %s  [%s] %s\n",
			dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")), e.Type, e.URL)
	}
}

func printSummary(summary *analytics.Summary) {
	fmt.Println(titleStyle.Render("Usage Statistics"))
	fmt.Printf("  Detections: %d  Analyses: %d  Sessions: %d\n",
		summary.TotalDetections, summary.TotalAnalyses, summary.SessionCount)
	fmt.Printf("  Unique streams: %d\n", summary.UniqueStreams)
	if summary.TopDomain != "" {
		fmt.Printf("  Top domain: %s\n", summary.TopDomain)
	}
	if summary.MostCommonType != "" {
		fmt.Printf("  Most common format: %s\n", summary.MostCommonType)
	}
}

func renderResult(result quality.Result, bestOnly, interactive bool) int {
	if !result.Success {
		fmt.Println(errStyle.Render("Analysis failed: " + result.Error))
		return 1
	}

	display := quality.FormatAnalysis(result)

	fmt.Println(titleStyle.Render(display.StreamTitle))
	fmt.Println(dimStyle.Render(display.StreamURL))
	fmt.Printf("Connection: %s\n\n", display.ConnectionSpeed)

	if display.Recommended != nil {
		fmt.Println(headerStyle.Render("Recommended"))
		fmt.Println(recommendedStyle.Render(
			fmt.Sprintf("  %s @ %s", display.Recommended.Resolution, display.Recommended.Bitrate)))
		fmt.Printf("  %s %s\n\n", display.Recommended.Reason,
			dimStyle.Render("("+display.Recommended.Confidence+" confidence)"))
	}

	if !bestOnly {
		fmt.Println(headerStyle.Render(fmt.Sprintf("Quality Ladder (%d)", len(result.Qualities))))
		for _, q := range result.Qualities {
			line := "  " + quality.FormatVariant(q)
			if q.Suitability.Recommended {
				line += recommendedStyle.Render(" ✓")
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	for _, w := range result.Warnings {
		style := dimStyle
		switch w.Severity {
		case "warning":
			style = warnStyle
		case "error":
			style = errStyle
		}
		line := style.Render(fmt.Sprintf("[%s] %s", w.Severity, w.Message))
		fmt.Println(line)
		if len(w.AffectedQualities) > 0 {
			fmt.Println(dimStyle.Render("  affects: " + strings.Join(w.AffectedQualities, ", ")))
		}
		if w.Suggestion != "" {
			fmt.Println(dimStyle.Render("  " + w.Suggestion))
		}
	}

	if interactive && len(result.Qualities) > 1 {
		compareQualities(result.Qualities)
	}

	return 0
}

// compareQualities lets the user pick two variants and prints the verdict.
func compareQualities(qualities []quality.Analysis) {
	options := make([]huh.Option[int], len(qualities))
	for i, q := range qualities {
		options[i] = huh.NewOption(quality.FormatVariant(q), i)
	}

	var picks []int
	menu := huh.NewMultiSelect[int]().
		Title("Compare Qualities").
		Description("Pick two variants to compare:").
		Options(options...).
		Limit(2).
		Value(&picks)

	if err := menu.Run(); err != nil {
		util.Errorf("Error showing comparison menu: %v", err)
		return
	}
	if len(picks) != 2 {
		return
	}

	cmp := quality.CompareQualities(qualities[picks[0]], qualities[picks[1]])
	fmt.Println()
	fmt.Println(headerStyle.Render("Comparison"))
	fmt.Printf("  Resolution: %v vs %v (better: %s)\n",
		cmp.Resolution.Q1, cmp.Resolution.Q2, cmp.Resolution.Better)
	fmt.Printf("  Bandwidth:  %v vs %v (better: %s)\n",
		cmp.Bandwidth.Q1, cmp.Bandwidth.Q2, cmp.Bandwidth.Better)
	fmt.Printf("  Codecs:     %v vs %v (better: %s)\n",
		cmp.Compatibility.Q1, cmp.Compatibility.Q2, cmp.Compatibility.Better)
	fmt.Println(recommendedStyle.Render("  Overall: " + cmp.Overall))
}
