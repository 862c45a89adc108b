package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/forge/builder"
	"github.com/tailored-agentic-units/forge/buildsvc"
	"github.com/tailored-agentic-units/forge/workspace"
)

const helloWorldApp = `/**
 * A simple Hello World React component.
 */
export default function App(): JSX.Element {
  return (
    <div className="flex items-center justify-center min-h-screen bg-gray-100">
      <h1 className="text-4xl font-bold text-blue-600">Hello World</h1>
    </div>
  );
}
`

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <outdir> <prompt>",
		Short: "Create a new app and write it to a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outdir, prompt := args[0], args[1]

			cfg, err := loadBuilderConfig()
			if err != nil {
				return err
			}
			b, err := builder.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize builder: %w", err)
			}

			fmt.Printf("Creating app in %s...\nPrompt: %s\n\n", outdir, prompt)

			result, err := b.Create(cmd.Context(), prompt)
			if err != nil {
				return err
			}

			if err := writeOutputFiles(outdir, result.Files, result.Artifacts); err != nil {
				return err
			}

			fmt.Printf("\n%s\n", result.Summary)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <appdir> <prompt>",
		Short: "Edit an existing app directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appDir, prompt := args[0], args[1]

			cfg, err := loadBuilderConfig()
			if err != nil {
				return err
			}
			b, err := builder.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize builder: %w", err)
			}

			existing, err := readSourceFiles(appDir)
			if err != nil {
				return err
			}
			fmt.Printf("Editing app in %s...\nPrompt: %s\n\nRead %d existing files\n", appDir, prompt, len(existing))

			result, err := b.Edit(cmd.Context(), prompt, existing)
			if err != nil {
				return err
			}

			printDiffs(existing, result.Files)

			if err := writeOutputFiles(appDir, result.Files, result.Artifacts); err != nil {
				return err
			}

			fmt.Printf("\n%s\n", result.Summary)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the build service with a hello world app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBuilderConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Submitting hello world app to %s...\n\n", cfg.BuildEndpoint)

			client := buildsvc.NewClient(cfg.BuildEndpoint)
			result, err := client.Build(cmd.Context(), map[string]string{"app.tsx": helloWorldApp})
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(result.Compiled))
			for path := range result.Compiled {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			fmt.Println("Success! Received compiled files:")
			for _, path := range paths {
				fmt.Printf("  - %s\n", path)
			}
			return nil
		},
	}
}

// readSourceFiles loads .ts/.tsx files from appDir/src, keyed by path
// relative to src/.
func readSourceFiles(appDir string) (map[string]string, error) {
	srcDir := filepath.Join(appDir, "src")
	if _, err := os.Stat(srcDir); err != nil {
		return nil, fmt.Errorf("%s does not exist", srcDir)
	}

	files := make(map[string]string)
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".ts" && ext != ".tsx" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// writeOutputFiles writes sources under outdir/src and compiled artifacts
// under outdir/dist.
func writeOutputFiles(outdir string, sources, compiled map[string]string) error {
	write := func(base string, files map[string]string) error {
		paths := make([]string, 0, len(files))
		for path := range files {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			outPath := filepath.Join(base, filepath.FromSlash(path))
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, []byte(files[path]), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", outPath)
		}
		return nil
	}

	if err := write(filepath.Join(outdir, "src"), sources); err != nil {
		return err
	}
	return write(filepath.Join(outdir, "dist"), compiled)
}

// printDiffs renders a unified diff per changed file.
func printDiffs(before, after map[string]string) {
	paths := make([]string, 0, len(after))
	for path := range after {
		paths = append(paths, path)
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		prev := before[path]
		next := after[path]
		if prev == next {
			continue
		}
		rendered, err := workspace.RenderUnified(path, prev, next)
		if err != nil {
			fmt.Printf("diff %s: %v\n", path, err)
			continue
		}
		fmt.Println(strings.TrimRight(rendered, "\n"))
	}
}
