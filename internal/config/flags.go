package config

import "flag"

// Flags are the command line overrides shared by every subcommand.
type Flags struct {
	config        *string
	debug         *bool
	logFile       *string
	binary        *bool
	dialect       *string
	aggregate     *string
	workers       *int
	noModifiers   *bool
	noTriangulate *bool
	noFlipUV      *bool
}

// RegisterFlags declares the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:        fs.String("config", "", "Path to config file"),
		debug:         fs.Bool("debug", false, "Enable debug logging"),
		logFile:       fs.String("log-file", "", "Also log to this file"),
		binary:        fs.Bool("binary", false, "Write the compiled binary container"),
		dialect:       fs.String("dialect", "", "Tag vocabulary: current or legacy"),
		aggregate:     fs.String("aggregate", "", "Top section: offset-table or dictionary"),
		workers:       fs.Int("workers", 0, "Blocks encoded in parallel"),
		noModifiers:   fs.Bool("no-modifiers", false, "Export base geometry without modifiers"),
		noTriangulate: fs.Bool("no-triangulate", false, "Use the dialect polygon policy instead of fans"),
		noFlipUV:      fs.Bool("no-flip-uv", false, "Keep V as authored"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.binary {
		cfg.Export.Binary = true
	}
	if *f.dialect != "" {
		cfg.Export.Dialect = *f.dialect
	}
	if *f.aggregate != "" {
		cfg.Export.Aggregate = *f.aggregate
	}
	if *f.workers > 0 {
		cfg.Export.Workers = *f.workers
	}
	if *f.noModifiers {
		cfg.Export.ApplyModifiers = false
	}
	if *f.noTriangulate {
		cfg.Export.Triangulate = false
	}
	if *f.noFlipUV {
		cfg.Export.FlipUVCoordinates = false
	}
}
