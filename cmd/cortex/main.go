package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = cmdLogin(os.Args[2:])
	case "signup":
		err = cmdSignup(os.Args[2:])
	case "logout":
		err = cmdLogout()
	case "whoami":
		err = cmdWhoami()
	case "task":
		err = cmdTask(os.Args[2:])
	case "work":
		err = cmdWork(os.Args[2:])
	case "response":
		err = cmdResponse(os.Args[2:])
	case "history":
		err = cmdHistory()
	case "stats":
		err = cmdStats()
	case "drill":
		err = cmdDrill(os.Args[2:])
	case "preview":
		err = cmdPreview(os.Args[2:])
	case "config":
		err = cmdConfig()
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("cortex %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Cortex - System Design Practice

Usage:
  cortex <command> [arguments]

Account Commands:
  login           Sign in with email and password
  signup          Create an account
  logout          Discard stored credentials
  whoami          Show the signed-in user

Task Commands:
  task list       List tasks (--role, --difficulty filters)
  task show       Show task details
  task daily      Pick a random task

Workspace Commands:
  work <task-id>  Materialize a workspace for a task
  work status     Show workspaces with unsubmitted drafts
  work submit     Bundle a workspace and submit it

Review Commands:
  response show      Show a submitted response
  response feedback  Request AI feedback on a response
  history            List past submissions
  stats              Show progress statistics

Drill Commands:
  drill list      List quick drills
  drill answer    Answer a drill

Other Commands:
  preview <file>  Live-render a diagram file in the browser
  config          Show current configuration
  version         Show version
  help            Show this help`)
}
