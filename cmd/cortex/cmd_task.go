package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cortexhq/cortex/internal/domain"
)

// cmdTask browses the task catalog
func cmdTask(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Task commands:

  cortex task list [--role <role>] [--difficulty <tier>]
  cortex task show <task-id>
  cortex task daily`)
		return nil
	}

	switch args[0] {
	case "list":
		return cmdTaskList(args[1:])
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("task ID required")
		}
		return cmdTaskShow(args[1])
	case "daily":
		return cmdTaskDaily()
	default:
		return fmt.Errorf("unknown task command: %s", args[0])
	}
}

func cmdTaskList(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	role, difficulty := "", ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--role":
			if i+1 >= len(args) {
				return fmt.Errorf("--role requires a value")
			}
			i++
			role = args[i]
		case "--difficulty":
			if i+1 >= len(args) {
				return fmt.Errorf("--difficulty requires a value")
			}
			i++
			difficulty = args[i]
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	tasks, err := a.client.ListTasks(context.Background(), role, difficulty)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks match.")
		return nil
	}

	for _, t := range tasks {
		fmt.Printf("  %s  %-45s %s / %s (~%dm)\n",
			t.ID, truncate(t.Title, 45), t.Role, t.Difficulty, t.EstimatedTimeMinutes)
	}
	fmt.Printf("\n%d task(s). Use 'cortex task show <id>' for details.\n", len(tasks))
	return nil
}

func cmdTaskShow(id string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	task, err := a.client.GetTask(context.Background(), id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	printTask(task)
	fmt.Printf("\nStart working: cortex work %s\n", task.ID)
	return nil
}

func cmdTaskDaily() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	task, err := a.client.RandomTask(context.Background())
	if err != nil {
		return fmt.Errorf("pick task: %w", err)
	}

	fmt.Println("Today's task:")
	printTask(task)
	fmt.Printf("\nStart working: cortex work %s\n", task.ID)
	return nil
}

func printTask(t *domain.Task) {
	fmt.Printf("%s\n%s\n\n", t.Title, strings.Repeat("=", len(t.Title)))
	fmt.Printf("Role:       %s\n", t.Role)
	fmt.Printf("Difficulty: %s\n", t.Difficulty)
	fmt.Printf("Estimated:  ~%d minutes\n\n", t.EstimatedTimeMinutes)

	if t.Scenario != "" {
		fmt.Printf("Scenario\n--------\n%s\n\n", t.Scenario)
	}
	if constraints := t.Constraints(); len(constraints) > 0 {
		fmt.Println("Constraints")
		fmt.Println("-----------")
		for _, c := range constraints {
			fmt.Printf("  - %s\n", c)
		}
		fmt.Println()
	}
	if len(t.Prompts) > 0 {
		fmt.Println("Think about")
		fmt.Println("-----------")
		for _, p := range t.Prompts {
			fmt.Printf("  - %s\n", p)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
