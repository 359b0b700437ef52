package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// list prints the user's trips newest first, with their expenses indented.
func (a *App) list(ctx context.Context) error {
	trips, err := a.client.ListTrips(ctx)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		fmt.Println("No trips yet.")
		return nil
	}

	for _, t := range trips {
		var total float64
		for _, e := range t.Expenses {
			total += e.Amount
		}
		fmt.Printf("%s  %s %s  (%d expenses, %.2f)\n", t.ID, t.Date, t.Location, len(t.Expenses), total)
		for _, e := range t.Expenses {
			photo := ""
			if e.PhotoURL != "" || e.PhotoPath != "" {
				photo = " [photo]"
			}
			fmt.Printf("    %s  %8.2f  %s%s\n", e.ID, e.Amount, e.Comment, photo)
		}
	}
	return nil
}

// deleteTrip removes a trip with everything in it, after confirmation.
func (a *App) deleteTrip(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Enter trip id", os.Stdout)
	if err != nil {
		return err
	}

	confirm, err := getSimpleText(a.reader, "Delete trip and all its expenses? (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "yes") {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.client.DeleteTrip(ctx, tripID); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}
