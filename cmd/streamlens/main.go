package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/streamlens/streamlens/internal/appflow"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
	"github.com/streamlens/streamlens/internal/version"
)

const runTimeout = 60 * time.Second

func main() {
	startAll := time.Now()

	versionFlag := flag.Bool("version", false, "show version information")
	debugFlag := flag.Bool("debug", false, "enable debug mode")
	helpFlag := flag.Bool("help", false, "show help message")
	altHelpFlag := flag.Bool("h", false, "show help message")

	sniffFlag := flag.String("sniff", "", "scan a web page for embedded streams")
	analyzeFlag := flag.String("analyze", "", "analyze a manifest URL against your connection")
	speedFlag := flag.Float64("speed", 0, "override connection speed in Mbps")
	jsonFlag := flag.Bool("json", false, "emit JSON instead of formatted output")
	bestOnlyFlag := flag.Bool("best-only", false, "show only the recommended quality")
	interactiveFlag := flag.Bool("interactive", false, "pick streams and qualities interactively")
	configFlag := flag.String("config", "", "path to a YAML codec table")
	dbFlag := flag.String("db", "", "path to the history database")
	historyFlag := flag.Bool("history", false, "show recently detected streams")
	statsFlag := flag.Bool("stats", false, "show usage statistics")

	flag.Parse()

	if *versionFlag || version.HasVersionArg() {
		version.ShowVersion()
		return
	}

	if *helpFlag || *altHelpFlag {
		printUsage()
		return
	}

	util.SetDebugMode(*debugFlag)
	util.InitLogger()
	if *debugFlag {
		util.Debugf("starting StreamLens v%s", version.Version)
	}

	// A bare URL argument is shorthand for -analyze.
	if *analyzeFlag == "" && *sniffFlag == "" && flag.NArg() > 0 {
		*analyzeFlag = flag.Arg(0)
	}

	if *analyzeFlag == "" && *sniffFlag == "" && !*historyFlag && !*statsFlag {
		printUsage()
		os.Exit(2)
	}

	app, err := appflow.New(appflow.Options{
		DBPath:         *dbFlag,
		CodecTablePath: *configFlag,
		SpeedMbps:      *speedFlag,
	})
	if err != nil {
		util.Errorf("%s", util.ErrorHandler(err))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	exitCode := 0
	switch {
	case *historyFlag:
		exitCode = runHistory(app, *jsonFlag)
	case *statsFlag:
		exitCode = runStats(app, *jsonFlag)
	case *sniffFlag != "":
		exitCode = runSniff(ctx, app, *sniffFlag, *jsonFlag, *bestOnlyFlag, *interactiveFlag)
	default:
		exitCode = runAnalyze(ctx, app, *analyzeFlag, *jsonFlag, *bestOnlyFlag, *interactiveFlag)
	}

	util.Debugf("[PERF] full run in %v", time.Since(startAll))
	os.Exit(exitCode)
}

func runSniff(ctx context.Context, app *appflow.App, pageURL string, asJSON, bestOnly, interactive bool) int {
	records, err := app.DetectStreams(ctx, pageURL)
	if err != nil {
		util.Errorf("%s", util.ErrorHandler(err))
		return 1
	}

	if len(records) == 0 {
		util.Warn("no streams found on page", "url", pageURL)
		return 1
	}

	if asJSON && !interactive {
		return printJSON(records)
	}

	printStreamList(records)

	target := records[0]
	if interactive && len(records) > 1 {
		chosen, ok := pickStream(records)
		if !ok {
			return 1
		}
		target = chosen
	} else if !interactive {
		return 0
	}

	result := app.AnalyzeRecord(ctx, target)
	if asJSON {
		return printJSON(result)
	}
	return renderResult(result, bestOnly, interactive)
}

func runAnalyze(ctx context.Context, app *appflow.App, rawURL string, asJSON, bestOnly, interactive bool) int {
	result := app.AnalyzeURL(ctx, rawURL)
	if asJSON {
		return printJSON(result)
	}
	return renderResult(result, bestOnly, interactive)
}

func runHistory(app *appflow.App, asJSON bool) int {
	entries, err := app.Store.History(0)
	if err != nil {
		util.Errorf("%s", util.ErrorHandler(err))
		return 1
	}
	if asJSON {
		return printJSON(entries)
	}
	printHistory(entries)
	return 0
}

func runStats(app *appflow.App, asJSON bool) int {
	summary, err := app.Analytics.Summarize()
	if err != nil {
		util.Errorf("%s", util.ErrorHandler(err))
		return 1
	}
	if asJSON {
		return printJSON(summary)
	}
	printSummary(summary)
	return 0
}

// pickStream asks the user which detected stream to analyze.
func pickStream(records []models.StreamRecord) (models.StreamRecord, bool) {
	options := make([]huh.Option[int], len(records))
	for i, rec := range records {
		label := fmt.Sprintf("[%s] %s", rec.Type, rec.URL)
		options[i] = huh.NewOption(label, i)
	}

	var choice int
	menu := huh.NewSelect[int]().
		Title("Detected Streams").
		Description("Choose a stream to analyze:").
		Options(options...).
		Value(&choice)

	if err := menu.Run(); err != nil {
		util.Errorf("Error showing stream menu: %v", err)
		return models.StreamRecord{}, false
	}
	return records[choice], true
}

func printUsage() {
	fmt.Println("StreamLens analyzes streaming manifests against your connection speed.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  streamlens [flags] <manifest-url>")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  streamlens https://cdn.example.com/master.m3u8")
	fmt.Println("  streamlens -sniff https://example.com/watch -interactive")
	fmt.Println("  streamlens -analyze https://cdn.example.com/stream.mpd -speed 25 -json")
}
