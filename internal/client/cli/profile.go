package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dverna/trasferte/internal/client/api"
)

// showProfile prints the stored presentation settings.
func (a *App) showProfile(ctx context.Context) error {
	p, err := a.client.GetProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Avatar:  %s\nPalette: %s\n", p.AvatarURL, p.Palette)
	return nil
}

// editProfile updates avatar and palette. Empty input keeps the current value.
func (a *App) editProfile(ctx context.Context) error {
	current, err := a.client.GetProfile(ctx)
	if err != nil {
		return err
	}

	avatar, err := getSimpleText(a.reader, fmt.Sprintf("Avatar URL [%s]", current.AvatarURL), os.Stdout)
	if err != nil {
		return err
	}
	palette, err := getSimpleText(a.reader, fmt.Sprintf("Palette [%s]", current.Palette), os.Stdout)
	if err != nil {
		return err
	}

	updated := &api.Profile{AvatarURL: current.AvatarURL, Palette: current.Palette}
	if avatar != "" {
		updated.AvatarURL = avatar
	}
	if palette != "" {
		updated.Palette = palette
	}

	if err := a.client.SaveProfile(ctx, updated); err != nil {
		return err
	}
	fmt.Println("Saved.")
	return nil
}
