package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) report(err error) error {
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
	return err
}

func (a *App) prompt(p string) (string, error) {
	return GetSimpleText(a.reader, p, a.out)
}

func (a *App) SignUp(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return a.report(err)
	}
	nickname, err := a.prompt("Nickname")
	if err != nil {
		return a.report(err)
	}
	if err := a.api.CheckNickname(ctx, nickname); err != nil {
		return a.report(err)
	}
	password, check, err := GetNewPassword(a.out)
	if err != nil {
		return a.report(err)
	}

	pair, err := a.api.SignUp(ctx, email, nickname, password, check)
	if err != nil {
		return a.report(err)
	}
	a.startSession(email, pair)
	fmt.Fprintln(a.out, "Account created, you are logged in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return a.report(err)
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return a.report(err)
	}

	pair, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.report(err)
	}
	a.startSession(email, pair)
	fmt.Fprintln(a.out, "Login successful.")
	return nil
}

// VerifyEmail sends a number to an address and checks what the user types back.
func (a *App) VerifyEmail(ctx context.Context) error {
	email := a.email
	if email == "" {
		var err error
		if email, err = a.prompt("Email"); err != nil {
			return a.report(err)
		}
	}
	if err := a.api.SendEmailNumber(ctx, email); err != nil {
		return a.report(err)
	}
	number, err := a.prompt("Number sent to " + email)
	if err != nil {
		return a.report(err)
	}
	if err := a.api.CompareEmailNumber(ctx, email, number); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Email verified.")
	return nil
}

// ForgotPassword resets the password of a logged out user with an emailed number.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return a.report(err)
	}
	if err := a.api.SendTempNumber(ctx, email); err != nil {
		return a.report(err)
	}
	number, err := a.prompt("Number sent to " + email)
	if err != nil {
		return a.report(err)
	}
	if err := a.api.CompareTempNumber(ctx, email, number); err != nil {
		return a.report(err)
	}
	password, check, err := GetNewPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	if err := a.api.ResetPassword(ctx, email, number, password, check); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Password changed, log in with the new one.")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	return a.report(a.withToken(ctx, func(token string) error {
		acc, err := a.api.Me(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "id:       %s\nemail:    %s\nnickname: %s\n", acc.ID, acc.Email, acc.Nickname)
		if acc.Profile != "" {
			fmt.Fprintf(a.out, "profile:  %s\n", acc.Profile)
		}
		return nil
	}))
}

func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}
	current, err := GetPassword("Current password", a.out)
	if err != nil {
		return a.report(err)
	}
	password, check, err := GetNewPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	err = a.withToken(ctx, func(token string) error {
		return a.api.ChangePassword(ctx, token, current, password, check)
	})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) UploadProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}
	path, err := a.prompt("Image file")
	if err != nil {
		return a.report(err)
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return a.report(err)
	}
	return a.report(a.withToken(ctx, func(token string) error {
		acc, err := a.api.UploadProfile(ctx, token, filepath.Base(path), image)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Profile image: %s\n", acc.Profile)
		return nil
	}))
}

func (a *App) Logout(ctx context.Context) error {
	err := a.withToken(ctx, func(token string) error {
		return a.api.Logout(ctx, token)
	})
	if err != nil {
		return a.report(err)
	}
	a.endSession()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// SignOut deletes the account after an explicit confirmation.
func (a *App) SignOut(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}
	reason, err := a.prompt("Why are you leaving? (optional)")
	if err != nil {
		return a.report(err)
	}
	ok, err := Confirm(a.reader, "Delete account "+a.email+"?", a.out)
	if err != nil {
		return a.report(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	err = a.withToken(ctx, func(token string) error {
		return a.api.SignOut(ctx, token, reason)
	})
	if err != nil {
		return a.report(err)
	}
	a.endSession()
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}
