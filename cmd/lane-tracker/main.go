package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ironsheep/lane-tracker/internal/config"
	"github.com/ironsheep/lane-tracker/internal/record"
	"github.com/ironsheep/lane-tracker/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Configure logging to stderr (stdout is for MCP protocol and track output)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cmd := "serve"
	args := []string{}
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("lane-tracker %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	case "serve":
		err = runServe(args)
	case "track":
		err = runTrack(args, os.Stdout)
	case "score":
		err = runScore(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func printUsage() {
	fmt.Println("lane-tracker - lane boundary tracking for dash-camera video")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lane-tracker [serve] [--record DB]   Run the MCP server on stdin/stdout")
	fmt.Println("  lane-tracker track [options]         Track lanes through a frame sequence")
	fmt.Println("  lane-tracker score --record DB       Summarize scored runs")
	fmt.Println()
	fmt.Println("Track options:")
	fmt.Println("  --frames DIR     Directory of frame images, played in name order")
	fmt.Println("  --video FILE     Video file (requires a gocv build)")
	fmt.Println("  --config FILE    Tuning JSON file")
	fmt.Println("  --seed N         Resampling seed")
	fmt.Println("  --out DIR        Write annotated frames to DIR")
	fmt.Println("  --plot FILE      Write a lane trace chart (.png, .svg or .pdf)")
	fmt.Println("  --record DB      Record results to a SQLite database")
	fmt.Println("  --labels FILE    Score results against hand labels")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Printf("  %s=FILE        Tuning JSON file\n", config.EnvConfigPath)
	fmt.Printf("  %s=N             Resampling seed\n", config.EnvSeed)
	fmt.Println()
	fmt.Println("Variables may also be set in a .env file in the working directory.")
}

func debugEnabled() bool {
	return config.LogLevel() == "debug"
}

func runServe(args []string) error {
	fs := newFlagSet("serve")
	dbPath := fs.String("record", "", "record sessions to this SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if debugEnabled() {
		log.Printf("Lane tracker MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	tuning, err := config.Load()
	if err != nil {
		return err
	}

	var store *record.Store
	if *dbPath != "" {
		store, err = record.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	return server.New(tuning, store).Run()
}
