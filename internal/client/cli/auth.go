package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.remote.Register(ctx, email, password); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	a.userName = email
	fmt.Println("Registered and signed in as", email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.remote.Login(ctx, email, password); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	a.userName = email
	fmt.Println("Signed in as", email)

	// A fresh sign-in is the natural moment to reconcile with the server.
	a.sync(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.remote.Logout()
	a.userName = ""
	fmt.Println("Signed out")
	return nil
}
