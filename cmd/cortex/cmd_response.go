package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cortexhq/cortex/internal/diagram"
	"github.com/cortexhq/cortex/internal/review"
)

// cmdResponse inspects submitted responses
func cmdResponse(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Response commands:

  cortex response show <response-id>      Show a submitted response
  cortex response feedback <response-id>  Request AI feedback`)
		return nil
	}

	switch args[0] {
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("response ID required")
		}
		return cmdResponseShow(args[1])
	case "feedback":
		if len(args) < 2 {
			return fmt.Errorf("response ID required")
		}
		return cmdResponseFeedback(args[1])
	default:
		return fmt.Errorf("unknown response command: %s", args[0])
	}
}

func cmdResponseShow(id string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	view := review.NewView(a.client)
	if err := view.Load(context.Background(), id); err != nil {
		return err
	}

	resp := view.Response()
	task := view.Task()

	fmt.Printf("%s\n%s\n", task.Title, strings.Repeat("=", len(task.Title)))
	fmt.Printf("Submitted: %s\n", resp.SubmittedAt.Local().Format("2006-01-02 15:04"))
	if resp.Score > 0 {
		fmt.Printf("Score:     %.1f/10\n", resp.Score)
	}
	fmt.Println()

	printSection("Assumptions", resp.Assumptions)

	arch := review.ResolveArchitecture(context.Background(), resp, diagram.NewEngine())
	switch arch.Kind {
	case review.DisplayImage:
		fmt.Printf("Architecture\n------------\n[canvas snapshot, %d bytes; open in the dashboard to view]\n\n", len(arch.Content))
	case review.DisplayDiagram:
		printSection("Architecture (diagram source)", resp.Architecture)
	default:
		printSection("Architecture", arch.Content)
	}

	printSection("Trade-offs", resp.TradeOffs)
	printSection("Failure scenarios", resp.FailureScenarios)

	if resp.HasFeedback() {
		printSection("AI Feedback", resp.AIFeedback)
		return nil
	}

	if remaining := view.CooldownRemaining(time.Now()); remaining > 0 {
		fmt.Printf("AI feedback unlocks in %s\n", formatDuration(remaining))
	} else {
		fmt.Printf("AI feedback available: cortex response feedback %s\n", resp.ID)
	}
	return nil
}

func cmdResponseFeedback(id string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	view := review.NewView(a.client)
	if err := view.Load(context.Background(), id); err != nil {
		return err
	}

	if view.Response().HasFeedback() {
		printSection("AI Feedback", view.Response().AIFeedback)
		return nil
	}

	if remaining := view.CooldownRemaining(time.Now()); remaining > 0 {
		fmt.Printf("Feedback unlocks in %s\n", formatDuration(remaining))
		countdown := review.NewCountdown(remaining)
		defer countdown.Stop()
		for v := range countdown.C {
			fmt.Printf("\r  %s remaining ", formatDuration(v))
		}
		fmt.Println()
	}

	fmt.Println("Requesting feedback...")
	if err := view.RequestFeedback(context.Background()); err != nil {
		return err
	}

	printSection("AI Feedback", view.Response().AIFeedback)
	return nil
}

func printSection(title, body string) {
	fmt.Printf("%s\n%s\n", title, strings.Repeat("-", len(title)))
	if strings.TrimSpace(body) == "" {
		fmt.Println("(empty)")
	} else {
		fmt.Println(body)
	}
	fmt.Println()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
