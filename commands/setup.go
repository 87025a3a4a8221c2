package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/remi-timeline/internal/config"
	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/data/cache"
	"github.com/penwyp/remi-timeline/internal/data/loader"
	"github.com/penwyp/remi-timeline/internal/data/store"
	"github.com/penwyp/remi-timeline/internal/data/watcher"
	"github.com/penwyp/remi-timeline/internal/util"
)

// flagKeys maps persistent flags onto config keys. Only flags the user set
// override the config file and environment.
var flagKeys = map[string]string{
	"dir":      "data_dir",
	"db":       "db_path",
	"sphere":   "sphere",
	"timezone": "timezone",
}

// runtimeEnv is what every command needs once configuration is resolved.
type runtimeEnv struct {
	cfg    *config.Config
	loc    *time.Location
	loader *loader.Loader
	dir    *loader.DirSource
	store  *store.Store
}

// loadConfig resolves defaults, config file, REMI_* environment and the
// flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	l := config.NewLoader()
	if cfgFile != "" {
		l.SetConfigFile(cfgFile)
	}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f != nil && f.Changed {
			l.Override(key, f.Value.String())
		}
	}
	if debug {
		l.Override("log_level", "debug")
	}

	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}
	if used := l.ConfigFileUsed(); used != "" {
		util.LogDebugf("Using config file %s", used)
	}
	return cfg, nil
}

// initRuntime sets up logging and the timezone. console mirrors logs to
// stderr when --debug is set; the TUI passes false.
func initRuntime(cfg *config.Config, console bool) (*time.Location, error) {
	err := util.InitLogger(util.LoggerOptions{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: debug && console,
		Format:  util.LogFormat(cfg.LogFormat),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, err
	}
	return util.GetTimeProvider().Location(), nil
}

// setup resolves configuration and opens the configured post source.
func setup(cmd *cobra.Command, console bool) (*runtimeEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	loc, err := initRuntime(cfg, console)
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{cfg: cfg, loc: loc}
	var source loader.PostSource
	if cfg.UsesDatabase() {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		env.store = st
		source = loader.NewDBSource(cfg.DBPath, st)
	} else {
		c, err := openCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		env.dir = loader.NewDirSource(cfg.DataDir, cfg.Concurrency, c)
		source = env.dir
	}

	env.loader = loader.New(source, cfg.Sphere, loc)
	util.LogDebug("Post source ready",
		util.F("source", source.Describe()), util.F("sphere", cfg.Sphere), util.F("timezone", loc.String()))
	return env, nil
}

// openCache opens the parse cache, clearing it first for --reset. A cache
// that cannot be opened only costs speed.
func openCache(dir string) (cache.Cache, error) {
	c, err := cache.NewFileCache(dir)
	if err != nil {
		util.LogWarnf("Parse cache disabled: %v", err)
		return nil, nil
	}
	if reset {
		if err := c.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear cache: %w", err)
		}
		util.LogInfo("Cache cleared", util.F("dir", dir))
	}
	return c, nil
}

// Close releases the database, if any.
func (e *runtimeEnv) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			util.LogWarnf("Failed to close database: %v", err)
		}
	}
}

// newWatcher watches whatever the posts are read from.
func (e *runtimeEnv) newWatcher() *watcher.Watcher {
	if e.cfg.UsesDatabase() {
		return watcher.New(filepath.Dir(e.cfg.DBPath), watcher.FileFilter(e.cfg.DBPath), constants.WatchCoalesceDelay)
	}
	return watcher.New(e.cfg.DataDir, watcher.JSONLFilter, constants.WatchCoalesceDelay)
}

// invalidate drops cached parses of changed files.
func (e *runtimeEnv) invalidate(change watcher.Change) {
	if e.dir == nil {
		return
	}
	for _, path := range change.Paths {
		e.dir.Invalidate(path)
	}
}
