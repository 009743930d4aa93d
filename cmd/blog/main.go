package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/jtmthf/blog/internal/builder"
	"github.com/jtmthf/blog/internal/config"
	"github.com/jtmthf/blog/internal/proj"
	"github.com/jtmthf/blog/internal/server"
)

var (
	cfgFile string
	cfg     *config.Config

	overrides struct {
		output string
		posts  string
		minify bool
	}
)

var rootCmd = &cobra.Command{
	Use:           "blog",
	Short:         "A markdown blog with an RSS feed",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:     "build",
	Short:   "Render the blog into the output directory",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := builder.New(cfg, nil)
		if err != nil {
			return err
		}

		return b.Build()
	},
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the blog, rendering pages on every request",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Serve(cfg)
	},
}

var previewPort int

var previewCmd = &cobra.Command{
	Use:     "preview",
	Short:   "Build the blog, serve the output and rebuild on changes",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Preview(cfg, previewPort)
	},
}

var newCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Create a new blog in directory NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return proj.New(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.toml", "config file, relative to current working directory")

	dirFlags(buildCmd.Flags())
	dirFlags(previewCmd.Flags())
	buildCmd.Flags().BoolVar(&overrides.minify, "minify", false, "minify html, css, js and svg output")
	previewCmd.Flags().IntVarP(&previewPort, "port", "p", 8080, "port to serve the build on")
	serveCmd.Flags().StringVar(&overrides.posts, "posts", "", "posts directory, overrides directories.posts")

	rootCmd.AddCommand(buildCmd, serveCmd, previewCmd, newCmd)
}

func dirFlags(fs *flag.FlagSet) {
	fs.StringVarP(&overrides.output, "output", "o", "", "output directory, overrides directories.output")
	fs.StringVar(&overrides.posts, "posts", "", "posts directory, overrides directories.posts")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Read(cfgFile)
	if err != nil {
		return err
	}

	fs := cmd.Flags()

	if fs.Changed("output") {
		c.OutputDir = overrides.output
	}

	if fs.Changed("posts") {
		c.PostsDir = overrides.posts
	}

	if fs.Changed("minify") {
		c.Minify = overrides.minify
	}

	cfg = c

	return nil
}

func main() {
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
