package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Disabled turns off a threshold or the processing limit.
const Disabled = -1

// Config holds every setting of a run. It is built once by ParseConfig and
// passed to the constructors; nothing reads process-wide state.
type Config struct {
	// DBDir is the Hydrus "db" directory holding client.master.db and client.caches.db.
	DBDir string `yaml:"db_dir"`
	// Output is the SQLite file the results are exported to.
	Output string `yaml:"output"`

	// Tag is a tag id, or "*" / "all" to scan the whole tag universe.
	Tag string `yaml:"tag"`

	// MinPxy drops pairs sharing fewer files than this. Disabled (-1) keeps all.
	MinPxy int64 `yaml:"min_pxy"`
	// MinPxOrPy drops pairs where either tag has fewer files than this. Disabled (-1) keeps all.
	MinPxOrPy int64 `yaml:"min_px_or_py"`
	// ProcessingLimit caps how many tags an all-tags scan visits. Disabled (-1) visits all.
	ProcessingLimit int `yaml:"processing_limit"`

	FilesTable    string `yaml:"files_table"`
	MappingsTable string `yaml:"mappings_table"`
	OutputTable   string `yaml:"output_table"`

	Verbose       bool `yaml:"verbose"`
	RunValidation bool `yaml:"validate"`
}

// DefaultConfig returns the settings used when neither a config file nor flags override them.
func DefaultConfig() *Config {
	return &Config{
		Output:          "out.db",
		Tag:             "*",
		MinPxy:          10,
		MinPxOrPy:       Disabled,
		ProcessingLimit: Disabled,
		FilesTable:      "combined_files_ac_cache_5",
		MappingsTable:   "specific_current_mappings_cache_1_5",
		OutputTable:     "tag_pairs",
	}
}

// MasterDB is the path of the tag dictionary database.
func (c *Config) MasterDB() string { return filepath.Join(c.DBDir, "client.master.db") }

// CachesDB is the path of the mappings cache database.
func (c *Config) CachesDB() string { return filepath.Join(c.DBDir, "client.caches.db") }

// Target says which tags a run visits.
type Target struct {
	All   bool
	TagID int64 // set when !All
}

func (t Target) String() string {
	if t.All {
		return "all tags"
	}
	return "tag " + strconv.FormatInt(t.TagID, 10)
}

// ParseTarget parses a tag selector: "*" or "all", or a positive tag id.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "*", "all":
		return Target{All: true}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Target{}, fmt.Errorf("%w: tag %q is neither a tag id nor \"*\"", ErrConfig, s)
	}
	return Target{TagID: id}, nil
}

// Target returns the parsed tag selector.
func (c *Config) Target() (Target, error) {
	return ParseTarget(c.Tag)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks every value without touching the databases.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return fmt.Errorf("%w: db_dir is required", ErrConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", ErrConfig)
	}
	if _, err := c.Target(); err != nil {
		return err
	}
	if c.MinPxy < Disabled {
		return fmt.Errorf("%w: min_pxy %d (use %d to disable)", ErrConfig, c.MinPxy, Disabled)
	}
	if c.MinPxOrPy < Disabled {
		return fmt.Errorf("%w: min_px_or_py %d (use %d to disable)", ErrConfig, c.MinPxOrPy, Disabled)
	}
	if c.ProcessingLimit < Disabled {
		return fmt.Errorf("%w: processing_limit %d (use %d to disable)", ErrConfig, c.ProcessingLimit, Disabled)
	}
	for name, v := range map[string]string{
		"files_table":    c.FilesTable,
		"mappings_table": c.MappingsTable,
		"output_table":   c.OutputTable,
	} {
		if !identRe.MatchString(v) {
			return fmt.Errorf("%w: %s %q is not a plain table name", ErrConfig, name, v)
		}
	}
	return nil
}

// LoadConfigFile overlays the YAML file at path onto cfg. Unknown keys are rejected.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config: %v", ErrConfig, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}
	return nil
}

// ParseConfig builds a Config from command-line args. Precedence is
// defaults, then the -config file, then flags given explicitly.
func ParseConfig(args []string, stderr io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("tagmi", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file; explicit flags override its values")
	fs.StringVar(&cfg.DBDir, "db-dir", cfg.DBDir, "Hydrus db directory containing client.master.db and client.caches.db")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "SQLite file to export results to")
	fs.StringVar(&cfg.Tag, "tag", cfg.Tag, `Tag id to analyse, or "*" for all tags`)
	fs.Int64Var(&cfg.MinPxy, "min-pxy", cfg.MinPxy, "Minimum shared file count (Pxy), -1 to disable")
	fs.Int64Var(&cfg.MinPxOrPy, "min-px-or-py", cfg.MinPxOrPy, "Minimum file count of either tag (Px, Py), -1 to disable")
	fs.IntVar(&cfg.ProcessingLimit, "limit", cfg.ProcessingLimit, "Number of tags to process in an all-tags scan, -1 for all")
	fs.StringVar(&cfg.FilesTable, "files-table", cfg.FilesTable, "Per-tag file count table in client.caches.db")
	fs.StringVar(&cfg.MappingsTable, "mappings-table", cfg.MappingsTable, "Tag/file mappings table in client.caches.db")
	fs.StringVar(&cfg.OutputTable, "output-table", cfg.OutputTable, "Results table name")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Print detailed progress")
	fs.BoolVar(&cfg.RunValidation, "validate", cfg.RunValidation, "Run validation queries after export")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagmi [flags]\n\n")
		fmt.Fprintf(stderr, "Computes tag co-occurrence statistics from a Hydrus client database.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrConfig, fs.Args())
	}

	if *configPath != "" {
		if err := LoadConfigFile(*configPath, cfg); err != nil {
			return nil, err
		}
		// Second pass re-applies the flags that were actually given on top of the file.
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
