package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	emit "github.com/goliatone/go-emit"
	"github.com/goliatone/go-emit/internal/ctxlog"
	"github.com/goliatone/go-emit/pkg/orchestrator"
	"github.com/goliatone/go-emit/pkg/permissions"
	"github.com/goliatone/go-emit/pkg/project"
)

func main() {
	configPath := flag.String("config", "", "project file (YAML or JSON)")
	root := flag.String("root", "", "root module specifier (overrides the project file)")
	bundle := flag.String("bundle", "", `bundle mode: "module" or "classic"`)
	noCheck := flag.Bool("no-check", false, "skip the validation pass")
	outDir := flag.String("out", "", "directory for emitted files (overrides the project file)")
	force := flag.Bool("force", false, "overwrite existing output files without asking")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	allowAll := flag.Bool("allow-all", false, "grant every permission")
	allowNet := flag.String("allow-net", "", "comma-separated hosts the compiler may fetch from")
	allowRead := flag.String("allow-read", "", "comma-separated paths the compiler may read")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	req, dir, err := buildRequest(*configPath, *root, *bundle, *noCheck, *outDir)
	if err != nil {
		log.Fatalf("invalid invocation: %v", err)
	}

	perms := permissions.Permissions{
		All:       *allowAll,
		AllowNet:  splitList(*allowNet),
		AllowRead: splitList(*allowRead),
	}

	gen := emit.NewOrchestrator(
		emit.WithUnstableAPIs(),
		emit.WithPermissions(perms),
	)

	result, err := gen.Emit(ctx, req)
	if err != nil {
		log.Fatalf("emit failed: %v", err)
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if len(result.IgnoredOptions) > 0 {
		fmt.Fprintf(os.Stderr, "ignored compiler options: %s\n", strings.Join(result.IgnoredOptions, ", "))
	}

	if dir == "" {
		for specifier := range result.Files {
			fmt.Println(specifier)
		}
		return
	}

	if err := writeFiles(dir, result.Files, *force); err != nil {
		log.Fatalf("write output: %v", err)
	}
	fmt.Printf("Emitted %d file(s) to %s\n", len(result.Files), dir)
}

func buildRequest(configPath, root, bundle string, noCheck bool, outDir string) (orchestrator.Request, string, error) {
	var req orchestrator.Request
	dir := outDir

	if configPath != "" {
		cfg, err := project.Load(configPath)
		if err != nil {
			return orchestrator.Request{}, "", err
		}
		req = cfg.Request()
		if dir == "" {
			dir = cfg.OutDir
		}
	}

	if root != "" {
		req.RootSpecifier = root
	}
	if bundle != "" {
		req.Bundle = bundle
	}
	if noCheck {
		check := false
		req.Check = &check
	}

	if req.RootSpecifier == "" {
		return orchestrator.Request{}, "", fmt.Errorf("a root specifier is required (use -root or a project file)")
	}
	return req, dir, nil
}

func writeFiles(dir string, files map[string]string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for specifier, content := range files {
		target := filepath.Join(dir, outputName(specifier))
		if !force {
			if _, err := os.Stat(target); err == nil {
				overwrite := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Overwrite %s?", target),
				}
				if err := survey.AskOne(prompt, &overwrite); err != nil {
					return err
				}
				if !overwrite {
					continue
				}
			}
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// outputName flattens an emitted specifier into a single safe file
// name, keeping the extension intact.
func outputName(specifier string) string {
	name := specifier
	if parsed, err := url.Parse(specifier); err == nil && parsed.Scheme != "" {
		name = parsed.Host + parsed.Path
	}
	name = strings.Trim(name, "/")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "bundle.js"
	}
	return name
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
