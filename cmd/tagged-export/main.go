// tagged-export writes scenes in the tagged geometry interchange format.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	tagged "github.com/flywave/go-tagged"
	"github.com/flywave/go-tagged/internal/config"
	"github.com/flywave/go-tagged/internal/logger"
	"github.com/flywave/go-tagged/internal/scenefile"
)

const sceneToken = "$SCENE"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "scene":
		err = cmdScene(args)
	case "gltf":
		err = cmdGltf(args)
	case "preview":
		err = cmdPreview(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tagged-export - tagged geometry format exporter

Usage:
  tagged-export <command> [options] <input> <output>

Commands:
  scene <scene.yaml> <output>        Export a scene description
  gltf <model.gltf|glb> <output>     Export the scene of a glTF file
  preview <scene.yaml> <out.glb>     Encode a scene and write it back as glTF

Options:
  -scene NAME      scene to export (default: first); -all exports every scene,
                   replacing $SCENE in the output path with the scene name
  -binary          write the compiled binary container
  -dialect NAME    current or legacy tag vocabulary
  -aggregate NAME  offset-table or dictionary
  -config PATH     config file (default: ./tagged.yaml)

Examples:
  tagged-export scene shop.yaml out/shop.tft
  tagged-export scene -all shop.yaml 'out/$SCENE.tft'
  tagged-export gltf -binary crate.glb crate.tfb`)
}

type session struct {
	cfg  *config.Config
	opts tagged.Options
	log  *zap.Logger
}

// setup loads config and flags and starts logging.
func setup(fs *flag.FlagSet, args []string) (*session, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	opts, err := cfg.Export.Options()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, opts: opts, log: logger.Named("export")}
	s.opts.Logger = s.log
	return s, nil
}

func (s *session) output(path string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	if s.opts.Binary {
		return path + tagged.BINARY_EXT
	}
	return path + tagged.TEXT_EXT
}

func cmdScene(args []string) error {
	fs := flag.NewFlagSet("scene", flag.ExitOnError)
	sceneName := fs.String("scene", "", "Scene to export")
	all := fs.Bool("all", false, "Export every scene")
	s, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: tagged-export scene [options] <scene.yaml> <output>")
	}
	input, output := fs.Arg(0), fs.Arg(1)

	f, err := scenefile.Load(input)
	if err != nil {
		return err
	}

	names := []string{*sceneName}
	if *all || *sceneName == "--all" {
		names = f.SceneNames()
		if len(names) > 1 && !strings.Contains(output, sceneToken) {
			return fmt.Errorf("exporting %d scenes needs %s in the output path", len(names), sceneToken)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, name := range names {
		scene, err := f.Build(name, s.cfg.Export.PrimitiveCells)
		if err != nil {
			return err
		}
		out := s.output(strings.ReplaceAll(output, sceneToken, tagged.SafeName(scene.Name)))
		if err := tagged.ExportFile(ctx, out, scene, s.opts); err != nil {
			return err
		}
		fmt.Printf("%s -> %s (%d objects)\n", scene.Name, out, scene.ObjectCount())
	}
	return nil
}

func cmdGltf(args []string) error {
	fs := flag.NewFlagSet("gltf", flag.ExitOnError)
	s, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: tagged-export gltf [options] <model.gltf|glb> <output>")
	}

	scene, err := tagged.OpenGltfScene(fs.Arg(0))
	if err != nil {
		return err
	}
	s.log.Debug("loaded glTF scene", zap.String("path", fs.Arg(0)), zap.Int("objects", scene.ObjectCount()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := s.output(fs.Arg(1))
	if err := tagged.ExportFile(ctx, out, scene, s.opts); err != nil {
		return err
	}
	fmt.Printf("%s -> %s (%d objects)\n", fs.Arg(0), out, scene.ObjectCount())
	return nil
}

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	sceneName := fs.String("scene", "", "Scene to preview")
	s, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: tagged-export preview [options] <scene.yaml> <out.gltf|glb>")
	}

	f, err := scenefile.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	scene, err := f.Build(*sceneName, s.cfg.Export.PrimitiveCells)
	if err != nil {
		return err
	}
	c, err := tagged.EncodeScene(context.Background(), scene, s.opts)
	if err != nil {
		return err
	}
	if err := tagged.SavePreview(fs.Arg(1), c); err != nil {
		return err
	}
	fmt.Printf("%s -> %s (%d blocks)\n", scene.Name, fs.Arg(1), c.BlockCount())
	return nil
}
