package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

var (
	errRequiredFieldNotFound = errors.New("required field not found in config")
	errGreaterThan           = errors.New("int value must be greater than 0")
)

// Config is the flattened, validated site configuration.
type Config struct {
	SiteTitle       string
	SiteDescription string
	SiteURL         string
	SiteShortName   string
	SiteAuthor      string

	PostsDir     string
	PublicDir    string
	TemplatesDir string
	OutputDir    string

	ChromaTheme       string
	ChromaLineNumbers bool
	ChromaWithClasses bool
	Minify            bool
	HashExts          []string
	Concurrency       int

	ManifestBackgroundColor string
	ManifestThemeColor      string

	Addr string
}

type config struct {
	Site struct {
		Title       string `toml:"title" human:"site.title"`
		Description string `toml:"description" human:"site.description"`
		URL         string `toml:"url" human:"site.url"`
		ShortName   string `toml:"shortName" human:"site.shortName" optional:""`
		Author      string `toml:"author" human:"site.author" optional:""`
	} `toml:"site"`
	Directories struct {
		Posts     string `toml:"posts" human:"directories.posts"`
		Public    string `toml:"public" human:"directories.public" optional:""`
		Templates string `toml:"templates" human:"directories.templates" optional:""`
		Output    string `toml:"output" human:"directories.output"`
	} `toml:"directories"`
	Build struct {
		ChromaTheme       string   `toml:"chromaTheme" human:"build.chromaTheme" optional:""`
		ChromaLineNumbers bool     `toml:"chromaLineNumbers" human:"build.chromaLineNumbers"`
		ChromaWithClasses bool     `toml:"chromaWithClasses" human:"build.chromaWithClasses"`
		Minify            bool     `toml:"minify" human:"build.minify"`
		Hash              []string `toml:"hash" human:"build.hash"`
		Concurrency       int      `toml:"concurrency" human:"build.concurrency" optional:""`
	} `toml:"build"`
	Manifest struct {
		BackgroundColor string `toml:"backgroundColor" human:"manifest.backgroundColor" optional:""`
		ThemeColor      string `toml:"themeColor" human:"manifest.themeColor" optional:""`
	} `toml:"manifest"`
	Server struct {
		Addr string `toml:"addr" human:"server.addr" optional:""`
	} `toml:"server"`
}

// Read decodes and validates the toml file at path. Values from the
// environment (and a .env file in the working directory, if present) take
// precedence over the file for BLOG_SITE_URL, BLOG_ADDR and BLOG_OUTPUT_DIR.
func Read(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := new(config)

	err = toml.Unmarshal(b, c)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}

	_ = godotenv.Load()
	applyEnv(c)

	err = check(c)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := &Config{
		SiteTitle:               c.Site.Title,
		SiteDescription:         c.Site.Description,
		SiteURL:                 c.Site.URL,
		SiteShortName:           c.Site.ShortName,
		SiteAuthor:              c.Site.Author,
		PostsDir:                c.Directories.Posts,
		PublicDir:               c.Directories.Public,
		TemplatesDir:            c.Directories.Templates,
		OutputDir:               c.Directories.Output,
		ChromaTheme:             c.Build.ChromaTheme,
		ChromaLineNumbers:       c.Build.ChromaLineNumbers,
		ChromaWithClasses:       c.Build.ChromaWithClasses,
		Minify:                  c.Build.Minify,
		HashExts:                c.Build.Hash,
		Concurrency:             c.Build.Concurrency,
		ManifestBackgroundColor: c.Manifest.BackgroundColor,
		ManifestThemeColor:      c.Manifest.ThemeColor,
		Addr:                    c.Server.Addr,
	}
	cfg.SetDefaults()

	return cfg, nil
}

// SetDefaults fills in optional values that were left empty.
func (c *Config) SetDefaults() {
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	if c.SiteShortName == "" {
		c.SiteShortName = c.SiteTitle
	}

	if c.ManifestBackgroundColor == "" {
		c.ManifestBackgroundColor = "#ffffff"
	}

	if c.ManifestThemeColor == "" {
		c.ManifestThemeColor = "#000000"
	}

	if c.Concurrency == 0 {
		c.Concurrency = 16
	}

	if c.Addr == "" {
		c.Addr = ":3000"
	}
}

func applyEnv(c *config) {
	for key, dst := range map[string]*string{
		"BLOG_SITE_URL":   &c.Site.URL,
		"BLOG_ADDR":       &c.Server.Addr,
		"BLOG_OUTPUT_DIR": &c.Directories.Output,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
}

func check(c *config) error {
	if !strings.HasPrefix(c.Site.URL, "http://") && !strings.HasPrefix(c.Site.URL, "https://") && c.Site.URL != "" {
		return fmt.Errorf("%q must be an absolute http(s) url, got %q", "site.url", c.Site.URL)
	}

	return checkrec(c)
}

func checkrec(c interface{}) error {
	cv := reflect.Indirect(reflect.ValueOf(c))
	vt := cv.Type()

	for i := 0; i < cv.NumField(); i++ {
		switch cv.Field(i).Kind() {
		case reflect.Struct:
			err := checkrec(cv.Field(i).Interface())
			if err != nil {
				return err
			}
		case reflect.String:
			if len(cv.Field(i).String()) == 0 {
				if _, found := vt.Field(i).Tag.Lookup("optional"); found {
					continue
				}

				return fmt.Errorf("%w: %q", errRequiredFieldNotFound, vt.Field(i).Tag.Get("human"))
			}
		case reflect.Int:
			if val := cv.Field(i).Int(); val <= 0 {
				if _, found := vt.Field(i).Tag.Lookup("optional"); found && val == 0 {
					continue
				}

				return fmt.Errorf("%w: %q", errGreaterThan, vt.Field(i).Tag.Get("human"))
			}
		default:
		}
	}

	return nil
}
