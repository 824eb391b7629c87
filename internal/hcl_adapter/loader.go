// Package hcl_adapter loads project configuration written in HCL.
package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader. Expressions can read the
// host environment through env.NAME.
func NewLoader() *Loader {
	return &Loader{evalCtx: hostEvalContext()}
}

// Load orchestrates the entire HCL configuration loading process. Every path
// may be a file or a directory; directories are searched for .hcl files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Configuration, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	cfg := config.NewConfiguration("")
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, l.evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.mergeFile(ctx, cfg, &root); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	if cfg.ProjectName == "" {
		cfg.ProjectName = defaultProjectName(paths[0])
	}

	logger.Debug("HCL loading complete.", "project", cfg.ProjectName, "containers", len(cfg.Containers), "tasks", len(cfg.Tasks))
	return cfg, nil
}

func (l *Loader) mergeFile(ctx context.Context, cfg *config.Configuration, root *fileRoot) error {
	if name := deref(root.ProjectName); name != "" {
		if cfg.ProjectName != "" && cfg.ProjectName != name {
			return fmt.Errorf("project_name is set to both '%s' and '%s'", cfg.ProjectName, name)
		}
		cfg.ProjectName = name
	}

	for _, block := range root.Containers {
		container, err := l.translateContainer(ctx, block)
		if err != nil {
			return err
		}
		if err := cfg.AddContainer(container); err != nil {
			return err
		}
	}
	for _, block := range root.Tasks {
		task, err := l.translateTask(ctx, block)
		if err != nil {
			return err
		}
		if err := cfg.AddTask(task); err != nil {
			return err
		}
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}

// defaultProjectName names the project after the directory holding its configuration.
func defaultProjectName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "stevedore"
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return filepath.Base(abs)
}
