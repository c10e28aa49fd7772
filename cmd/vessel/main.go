// Command vessel scaffolds new applications built on the framework.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const frameworkVersion = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vessel",
		Short: "Vessel application scaffolding",
	}
	root.AddCommand(newCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the framework version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "vessel "+frameworkVersion)
		},
	}
}

func newCmd() *cobra.Command {
	var modulePath string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new application skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if modulePath == "" {
				modulePath = name
			}
			if err := scaffold(name, modulePath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n\n  cd %s\n  go mod tidy\n  go run .\n", name, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&modulePath, "module", "", "Go module path for the new application")
	return cmd
}

// scaffold writes the skeleton: config/, .env, views/, and main.go.
func scaffold(dir, modulePath string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %s already exists", dir)
	}

	for _, sub := range []string{"config", "views"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}

	files := map[string]string{
		"config/app.json":      appConfig(dir),
		"config/log.json":      logConfig,
		"config/database.json": databaseConfig,
		".env":                 envFile,
		"go.mod":               goModFile(modulePath),
		"main.go":              mainFile,
		"views/home.html":      homeView,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func appConfig(name string) string {
	return fmt.Sprintf(`{
  "name": "%s",
  "env": "${APP_ENV:local}",
  "debug": "${APP_DEBUG:true}",
  "port": "${APP_PORT:8000}",
  "providers": ["log", "routing", "view"]
}
`, name)
}

const logConfig = `{
  "level": "${LOG_LEVEL:info}",
  "format": "text"
}
`

const databaseConfig = `{
  "driver": "${DB_DRIVER:sqlite3}",
  "name": "${DB_NAME::memory:}"
}
`

const envFile = `APP_ENV=local
APP_DEBUG=true
APP_PORT=8000
LOG_LEVEL=debug
`

func goModFile(modulePath string) string {
	return fmt.Sprintf(`module %s

go 1.24

require github.com/vessel-go/framework v%s
`, modulePath, frameworkVersion)
}

const mainFile = `package main

import (
	"log"

	"github.com/vessel-go/framework/app"
	vhttp "github.com/vessel-go/framework/http"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	application.Get("/", func(req *vhttp.Request) vhttp.Responder {
		return vhttp.OK(map[string]any{"message": "Welcome to Vessel"})
	})

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
`

const homeView = `<!DOCTYPE html>
<html>
<head><title>{{.title}}</title></head>
<body><h1>{{.title}}</h1></body>
</html>
`
