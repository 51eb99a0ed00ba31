// Lantern CLI - loads a movie configuration and drives the player's
// frame loop from the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/lantern-player/lantern/player"
)

func main() {
	configPath := flag.String("c", "", "Path to lantern.toml (defaults apply when omitted)")
	frames := flag.Int("frames", 1, "Number of frames to run after loading")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lantern [options] [units...]\n\n")
		fmt.Fprintf(os.Stderr, "Loads encoded script units and runs the player for a number of frames.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lantern -c pong/lantern.toml pong/main.abx\n")
		fmt.Fprintf(os.Stderr, "  lantern -frames 60 main.abx extras.abx\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cfg := player.DefaultConfig()
	if *configPath != "" {
		loaded, err := player.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	p, err := player.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	p.AVM1.TraceSink = func(s string) { fmt.Println(s) }

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		digest, err := p.LoadUnit(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Loaded %s (%s, %d bytes)\n", path, digest, len(data))
		}
	}

	for i := 0; i < *frames; i++ {
		p.Tick()
	}
	if *verbose {
		fmt.Printf("Ran %d frames, %d live objects\n", p.Frame(), p.Space.Live())
	}
}
