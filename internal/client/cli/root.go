package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// runCommand dispatches one REPL command; unknown commands report themselves.
func (a *App) runCommand(ctx context.Context, cmd string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "list":
		return a.list(ctx)
	case "add":
		return a.addExpense(ctx)
	case "rm":
		return a.removeExpense(ctx)
	case "rmtrip":
		return a.deleteTrip(ctx)
	case "export":
		return a.exportTrip(ctx)
	case "exportsel":
		return a.exportSelected(ctx)
	case "csv":
		return a.exportCSV(ctx)
	case "profile":
		return a.showProfile(ctx)
	case "editprofile":
		return a.editProfile(ctx)
	case "gateway":
		return a.startGateway(ctx)
	case "skipwaiting":
		return a.gatewaySkipWaiting(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to Trasferte CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.Login(ctx)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("trasferte %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: list, add, rm, rmtrip, export, exportsel, csv, profile, editprofile, gateway, skipwaiting, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, gateway, skipwaiting")
			}
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			if err := a.runCommand(ctx, cmd); err != nil {
				fmt.Println("Error:", err)
			}
		}
	}

}
