package main

import (
	"context"
	"fmt"
	"strings"
)

// cmdDrill runs quick knowledge drills
func cmdDrill(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Drill commands:

  cortex drill list                  List available drills
  cortex drill answer <id> <option>  Answer a drill`)
		return nil
	}

	switch args[0] {
	case "list":
		return cmdDrillList()
	case "answer":
		if len(args) < 3 {
			return fmt.Errorf("drill ID and answer required")
		}
		return cmdDrillAnswer(args[1], strings.Join(args[2:], " "))
	default:
		return fmt.Errorf("unknown drill command: %s", args[0])
	}
}

func cmdDrillList() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	drills, err := a.client.ListDrills(context.Background())
	if err != nil {
		return fmt.Errorf("list drills: %w", err)
	}

	if len(drills) == 0 {
		fmt.Println("No drills available.")
		return nil
	}

	for _, d := range drills {
		fmt.Printf("%s  [%s] %s\n", d.ID, d.DrillType, d.Title)
		fmt.Printf("    %s\n", d.Question)
		for i, opt := range d.Options {
			fmt.Printf("      %d. %s\n", i+1, opt)
		}
		fmt.Println()
	}
	fmt.Println("Answer with: cortex drill answer <id> <option text>")
	return nil
}

func cmdDrillAnswer(id, answer string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	result, err := a.client.SubmitDrill(context.Background(), id, answer)
	if err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}

	if result.CorrectAnswer == answer {
		fmt.Println("Correct!")
	} else {
		fmt.Printf("Not quite. Correct answer: %s\n", result.CorrectAnswer)
	}
	if result.Explanation != "" {
		fmt.Printf("\n%s\n", result.Explanation)
	}
	return nil
}
