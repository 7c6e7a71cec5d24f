package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"reelist/internal/events"
	"reelist/internal/shared"
)

// AuthSignup creates an account, establishes the session, and seeds the watchlist.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	user, token, err := r.auth.Signup(ctx, username, cmd.String("password"))
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	r.manager.Establish(user, token)
	r.logger.Infof("signed up as %s", user.Username)

	return r.writePlain("✓ Signed up as %s\n", user.Username)
}

// AuthLogin signs in to an existing account and establishes the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	user, token, err := r.auth.Login(ctx, username, cmd.String("password"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.manager.Establish(user, token)
	r.logger.Infof("signed in as %s", user.Username)

	return r.writePlain("✓ Signed in as %s (%d saved)\n", user.Username, r.controller.Count())
}

// AuthDemo signs in as a passwordless demo user.
func (r *Runner) AuthDemo(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		username = "demo"
	}

	user, token, err := r.watchlist.EnsureDemoUser(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.manager.Establish(user, token)

	return r.writePlain("✓ Signed in as demo user %s\n", user.Username)
}

// AuthLogout tears the session down: stored user and token are cleared and
// every surface resets through the logout broadcast.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	if _, ok := r.manager.Current(); !ok {
		return r.writePlain("Not signed in\n")
	}

	r.manager.Teardown()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus shows the current session state without issuing any requests.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	user, hasUser := r.manager.Current()
	_, hasToken := r.manager.Token()

	if !hasUser && !hasToken {
		return r.writePlain("✗ Not signed in\n")
	}

	if hasUser {
		r.writePlain("User: %s\n", user.Username)
		if user.AvatarURL != "" {
			r.writePlain("Avatar: %s\n", r.client.ResolveURL(user.AvatarURL))
		}
	}
	if hasToken {
		r.writePlain("Token: present\n")
	} else {
		r.writePlain("Token: missing (cached identity only)\n")
	}

	return nil
}

// AuthProfile updates the username on the current account.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	user, err := r.auth.UpdateProfile(ctx, cmd.String("username"))
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	r.manager.Refresh(user)
	return r.writePlain("✓ Username changed to %s\n", user.Username)
}

// AuthAvatarUpload uploads an avatar image and refreshes the stored identity.
func (r *Runner) AuthAvatarUpload(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	user, err := r.auth.UploadAvatar(ctx, path)
	if err != nil {
		return fmt.Errorf("avatar upload failed: %w", err)
	}

	r.manager.Refresh(user)
	r.bus.Publish(events.AvatarPreviewEvent(r.client.ResolveURL(user.AvatarURL)))

	return r.writePlain("✓ Avatar updated: %s\n", r.client.ResolveURL(user.AvatarURL))
}

// AuthAvatarRemove clears the avatar on the current account.
func (r *Runner) AuthAvatarRemove(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	user, err := r.auth.RemoveAvatar(ctx)
	if err != nil {
		return fmt.Errorf("avatar removal failed: %w", err)
	}

	r.manager.Refresh(user)
	r.bus.Publish(events.AvatarPreviewEvent(""))

	return r.writePlain("✓ Avatar removed\n")
}

// AuthDelete removes the account on the server and tears the session down.
func (r *Runner) AuthDelete(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	if !cmd.Bool("yes") {
		return r.writePlain("Pass --yes to confirm account deletion\n")
	}

	if err := r.auth.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("account deletion failed: %w", err)
	}

	r.manager.Teardown()
	return r.writePlain("✓ Account deleted\n")
}
