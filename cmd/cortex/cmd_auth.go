package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cortexhq/cortex/internal/api"
	"github.com/cortexhq/cortex/internal/domain"
	"github.com/cortexhq/cortex/internal/session"
)

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// cmdLogin signs in and stores the bearer token
func cmdLogin(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		if email, err = prompt("Email"); err != nil {
			return err
		}
	}
	password, err := prompt("Password")
	if err != nil {
		return err
	}

	token, err := a.client.Login(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.sessions.Save(token.AccessToken, email); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	fmt.Printf("Signed in as %s\n", email)
	return nil
}

// cmdSignup registers an account and signs in
func cmdSignup(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email, err := prompt("Email")
	if err != nil {
		return err
	}
	password, err := prompt("Password")
	if err != nil {
		return err
	}
	fullName, err := prompt("Full name")
	if err != nil {
		return err
	}

	fmt.Println("\nRoles:")
	for i, role := range domain.Roles() {
		fmt.Printf("  %d. %s\n", i+1, role)
	}
	choice, err := prompt("Pick a role (number, or blank to skip)")
	if err != nil {
		return err
	}

	req := api.SignupRequest{Email: email, Password: password, FullName: fullName}
	roles := domain.Roles()
	if choice != "" {
		var n int
		if _, err := fmt.Sscanf(choice, "%d", &n); err != nil || n < 1 || n > len(roles) {
			return fmt.Errorf("invalid role choice %q", choice)
		}
		req.SelectedRole = roles[n-1]
	}

	token, err := a.client.Signup(context.Background(), req)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	if err := a.sessions.Save(token.AccessToken, email); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	fmt.Printf("Account created. Signed in as %s\n", email)
	return nil
}

// cmdLogout discards the stored credential
func cmdLogout() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.sessions.Clear(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	fmt.Println("Signed out")
	return nil
}

// cmdWhoami probes the stored credential against the server
func cmdWhoami() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	guard := session.NewGuard(a.client, a.sessions)
	user, err := guard.Resolve(context.Background())
	if err != nil {
		if errors.Is(err, domain.ErrNoCredentials) {
			fmt.Println("Not signed in")
			return nil
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			fmt.Println("Stored credential is no longer valid (run 'cortex login')")
			return nil
		}
		return err
	}

	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	if user.SelectedRole != nil {
		fmt.Printf("Role: %s\n", *user.SelectedRole)
	}
	return nil
}
