package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoobzio/zin"
	"github.com/zoobzio/zin/storage"
)

// app carries what every subcommand needs. It is rebuilt for each root
// command so tests can run commands side by side.
type app struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "zin",
		Short: "An embedded encrypted key-value store",
		Long: `zin stores values encrypted under a per-store key. Each value is bound to
the key it is stored under and cannot be read back under any other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.zin.yaml)")
	flags.StringP("dir", "d", "", "directory holding the store and its key")
	flags.String("passphrase", "", "derive the key from a passphrase (or use ZIN_PASSPHRASE)")
	flags.String("cipher", "", "cipher: aes or chacha20")
	flags.String("format", "", "value format: json, yaml, msgpack, xml or bson")
	flags.String("log-level", "", "store diagnostics: full or none")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "print store diagnostics to stderr")

	for key, flag := range map[string]string{
		"dir":        "dir",
		"passphrase": "passphrase",
		"cipher":     "cipher",
		"format":     "format",
		"log_level":  "log-level",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		a.putCmd(),
		a.getCmd(),
		a.deleteCmd(),
		a.containsCmd(),
		a.countCmd(),
		a.clearCmd(),
		a.gcCmd(),
	)
	return rootCmd
}

func (a *app) initConfig(stderr io.Writer) error {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	for _, key := range []string{"dir", "passphrase", "cipher", "format", "log_level"} {
		a.v.SetDefault(key, "")
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".zin")
	}

	a.v.SetEnvPrefix("ZIN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		a.log.Debug().Str("file", a.v.ConfigFileUsed()).Msg("using config file")
	}
	return nil
}

func (a *app) config() (zin.Config, error) {
	var cfg zin.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return zin.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Dir == "" {
		return zin.Config{}, errors.New("no store directory: set --dir, ZIN_DIR or dir in the config file")
	}
	return cfg, cfg.Validate()
}

// session is an open store. The CLI opens badger itself so gc can reach it.
type session struct {
	z  *zin.Zin
	db *storage.Badger
}

func (a *app) open() (*session, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	b, err := cfg.Builder()
	if err != nil {
		return nil, err
	}

	dbLog := a.log.Level(zerolog.WarnLevel)
	db, err := storage.NewBadger(storage.BadgerOptions{
		Dir:       filepath.Join(cfg.Dir, "data"),
		Namespace: zin.StorageNamespace,
		Logger:    &dbLog,
	})
	if err != nil {
		return nil, err
	}

	z, err := b.SetStorage(db).SetLogInterceptor(zin.ZerologInterceptor(a.log)).Build()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &session{z: z, db: db}, nil
}

func (s *session) close() error {
	s.z.Destroy()
	return s.db.Close()
}

// run opens the store around fn.
func (a *app) run(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := a.open()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, s)
	}
}
