package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/inject/errors"
)

// FileSystem is the file access LoadConfig needs. Tests replace it.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem reads the real file system.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Options holds the loader collaborators and explicit file overrides.
type Options struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// Option configures LoadConfig.
type Option func(*Options)

// WithFileSystem replaces the file system.
func WithFileSystem(fs FileSystem) Option {
	return func(o *Options) { o.FileSystem = fs }
}

// WithConfigFile uses path instead of searching for config.yml.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile uses path instead of searching for a .env file.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithEnvPrefix requires environment overrides to start with prefix_.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = prefix }
}

// Files are the configuration files picked for a service. Empty fields mean
// nothing was found.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Locate picks the config and .env files for service, preferring explicit
// paths in o.
func Locate(service string, o Options) Files {
	files := Files{ConfigFile: o.ConfigFile, EnvFile: o.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(o.FileSystem, configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(o.FileSystem, envCandidates(service))
	}
	return files
}

// searchDirs lists the directories searched for a service, nearest first.
func searchDirs(service string) []string {
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		dirs = append(dirs, up+"/cmd/"+service)
	}
	return append(dirs, "./config", "../config", ".")
}

func configCandidates(service string) []string {
	var out []string
	for _, dir := range searchDirs(service) {
		out = append(out, dir+"/config.yml", dir+"/config.yaml")
	}
	return out
}

func envCandidates(service string) []string {
	var out []string
	for _, name := range []string{".env." + service, ".env"} {
		for _, dir := range searchDirs(service) {
			out = append(out, dir+"/"+name)
		}
	}
	return out
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig fills cfg, a pointer to a struct with mapstructure tags, from
// the service's config file, its .env file and the environment. A missing
// file is not an error; an unreadable one is.
func LoadConfig(service string, cfg any, opts ...Option) error {
	o := Options{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&o)
	}
	files := Locate(service, o)

	v := viper.New()
	if files.ConfigFile != "" && o.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidConfig(fmt.Sprintf("reading %s", files.ConfigFile)).WithCause(err)
		}
	}
	if files.EnvFile != "" && o.FileSystem.Exists(files.EnvFile) {
		if err := o.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return errors.InvalidConfig(fmt.Sprintf("loading %s", files.EnvFile)).WithCause(err)
		}
	}

	if o.EnvPrefix != "" {
		v.SetEnvPrefix(o.EnvPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindKeys(v, reflect.TypeOf(cfg), ""); err != nil {
		return err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidConfig(fmt.Sprintf("decoding configuration of %s", service)).WithCause(err)
	}
	return nil
}

// bindKeys registers every leaf key of t with v so that environment
// variables reach keys absent from the config file.
func bindKeys(v *viper.Viper, t reflect.Type, prefix string) error {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if opts == "squash" || (f.Anonymous && name == "") {
			if err := bindKeys(v, ft, prefix); err != nil {
				return err
			}
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if ft.Kind() == reflect.Struct {
			if err := bindKeys(v, ft, key); err != nil {
				return err
			}
			continue
		}
		if err := v.BindEnv(key); err != nil {
			return errors.InvalidConfig("binding " + key).WithCause(err)
		}
	}
	return nil
}
