package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cortexhq/cortex/internal/canvas"
	"github.com/cortexhq/cortex/internal/diagram"
	"github.com/cortexhq/cortex/internal/workspace"
)

// Section files materialized into a workspace directory
var workspaceFiles = map[workspace.Section]string{
	workspace.SectionAssumptions:  "assumptions.md",
	workspace.SectionTradeOffs:    "trade_offs.md",
	workspace.SectionFailureModes: "failure_scenarios.md",
}

const (
	diagramFile = "architecture.mmd"
	sceneFile   = "scene.json"
)

// cmdWork manages task workspaces
func cmdWork(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Work commands:

  cortex work <task-id>         Materialize a workspace directory
  cortex work status            Show workspaces with unsubmitted drafts
  cortex work submit <task-id>  Bundle the workspace and submit it`)
		return nil
	}

	switch args[0] {
	case "status":
		return cmdWorkStatus()
	case "submit":
		if len(args) < 2 {
			return fmt.Errorf("task ID required")
		}
		return cmdWorkSubmit(args[1])
	default:
		return cmdWorkStart(args[0])
	}
}

func (a *app) workspaceDir(taskID string) string {
	return filepath.Join(a.dir, "workspaces", taskID)
}

// cmdWorkStart fetches the task and lays out an editable directory
func cmdWorkStart(taskID string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	task, err := a.client.GetTask(context.Background(), taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	dir := a.workspaceDir(taskID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}

	// Task brief for reference while editing
	var brief strings.Builder
	fmt.Fprintf(&brief, "# %s\n\n%s\n\n", task.Title, task.Scenario)
	for _, c := range task.Constraints() {
		fmt.Fprintf(&brief, "- %s\n", c)
	}
	if err := writeIfAbsent(filepath.Join(dir, "TASK.md"), brief.String()); err != nil {
		return err
	}

	for _, name := range workspaceFiles {
		if err := writeIfAbsent(filepath.Join(dir, name), ""); err != nil {
			return err
		}
	}
	if err := writeIfAbsent(filepath.Join(dir, diagramFile), diagram.DefaultSource+"\n"); err != nil {
		return err
	}
	if err := writeIfAbsent(filepath.Join(dir, sceneFile), ""); err != nil {
		return err
	}

	fmt.Printf("Workspace ready: %s\n\n", dir)
	fmt.Println("Edit the section files, then:")
	fmt.Printf("  cortex preview %s\n", filepath.Join(dir, diagramFile))
	fmt.Printf("  cortex work submit %s\n", taskID)
	return nil
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// cmdWorkStatus lists workspace directories and their draft state
func cmdWorkStatus() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	root := filepath.Join(a.dir, "workspaces")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No workspaces. Start one with 'cortex work <task-id>'.")
			return nil
		}
		return fmt.Errorf("read workspaces: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No workspaces. Start one with 'cortex work <task-id>'.")
		return nil
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		state := "empty"
		if hasContent(filepath.Join(root, e.Name())) {
			state = "in progress"
		}
		fmt.Printf("  %-36s %s\n", e.Name(), state)
	}
	return nil
}

func hasContent(dir string) bool {
	for _, name := range workspaceFiles {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil && strings.TrimSpace(string(data)) != "" {
			return true
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, sceneFile)); err == nil && strings.TrimSpace(string(data)) != "" {
		return true
	}
	return false
}

// cmdWorkSubmit reads the workspace files, bundles them, and posts the
// response
func cmdWorkSubmit(taskID string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	dir := a.workspaceDir(taskID)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("no workspace for %s (run 'cortex work %s' first)", taskID, taskID)
	}

	w := workspace.Open(taskID, a.store, a.client)
	defer w.Close()

	for section, name := range workspaceFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := w.SetSection(section, strings.TrimSpace(string(data))); err != nil {
			return err
		}
	}

	sceneData, _ := os.ReadFile(filepath.Join(dir, sceneFile))
	if strings.TrimSpace(string(sceneData)) != "" {
		scene := canvas.DecodeScene(string(sceneData))
		adapter := canvas.NewAdapter(w.UseScene)
		defer adapter.Close()
		w.AttachCanvas(adapter)
		adapter.OnChange(scene)
	} else {
		diagramData, err := os.ReadFile(filepath.Join(dir, diagramFile))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", diagramFile, err)
		}
		if text := strings.TrimSpace(string(diagramData)); text != "" {
			w.UseDiagramText(text)
		}
	}

	id, err := w.Submit(context.Background())
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	fmt.Printf("Submitted. Response ID: %s\n", id)
	fmt.Printf("Review it with: cortex response show %s\n", id)
	return nil
}
