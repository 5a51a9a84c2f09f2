// Command validate runs recorded generator outputs through the ingest
// pipeline, prints the problems found in each file, and optionally writes the
// canonical stories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"

	"storybook/pkg/ids"
	"storybook/pkg/ingest"
	"storybook/pkg/storytree"
	"storybook/pkg/utils"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "", "directory to write canonical stories to")
	lesson := fs.String("lesson", "", "lesson recorded on written stories")
	theme := fs.String("theme", "", "theme recorded on written stories")
	format := fs.String("format", "", "story format recorded on written stories")
	scheme := fs.String("ids", string(ids.SchemeUUID), "canonical id scheme: uuid or ksuid")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: validate [flags] file...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	newID, err := ids.ByScheme(*scheme)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log.SetOutput(stderr)

	p := ingest.New(newID)
	code := exitOK
	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			code = exitInvalid
			continue
		}

		res, err := p.Run(ctx, ingest.Request{
			Lesson:      *lesson,
			Theme:       *theme,
			StoryFormat: *format,
			Payload:     string(raw),
		})
		if err != nil {
			report(stdout, path, err)
			code = exitInvalid
			continue
		}
		fmt.Fprintf(stdout, "%s: ok (%d nodes, %d edges)\n", path, len(res.Story.Tree.Nodes), len(res.Story.Tree.Edges))

		if *out == "" {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dst := filepath.Join(*out, utils.SanitizeFilename(base)+"."+res.Story.ID+".json")
		if err := utils.Save(dst, res.Story); err != nil {
			fmt.Fprintf(stderr, "%s: writing %s: %v\n", path, dst, err)
			code = exitInvalid
			continue
		}
		fmt.Fprintf(stdout, "  wrote %s\n", dst)
	}
	return code
}

func report(w io.Writer, path string, err error) {
	var verr *storytree.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "%s: %d problem(s)\n", path, len(verr.Problems))
		for _, p := range verr.Problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		return
	}
	fmt.Fprintf(w, "%s: %v\n", path, err)
}
