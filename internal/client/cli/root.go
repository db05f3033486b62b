package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName
	}
	if !a.store.Available() {
		if s != "" {
			s += " "
		}
		s += "no-db"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to FlashRead CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("fread %s> ", a.getStatus())
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
			fmt.Println("Library:  addfile, paste, (l)ist, read, delete")
			fmt.Println("Stats:    stats, freeze")
			fmt.Println("Backup:   export, import")
			if a.isLoggedIn() {
				fmt.Println("Account:  sync, logout, exit")
			} else {
				fmt.Println("Account:  register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "addfile":
			_ = a.addFile(ctx)
		case "paste":
			_ = a.addPaste(ctx)
		case "l", "list":
			_ = a.list(ctx)
		case "read":
			_ = a.read(ctx)
		case "delete":
			_ = a.delete(ctx)
		case "sync":
			a.sync(ctx)
		case "stats":
			_ = a.stats(ctx)
		case "freeze":
			_ = a.freeze(ctx)
		case "export":
			_ = a.export(ctx)
		case "import":
			_ = a.importBackup(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
