package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dverna/trasferte/internal/client/api"
)

// addExpense interactively records an expense: location, date, amount, an
// optional comment, and an optional receipt photo uploaded through a
// presigned URL before the expense is created.
func (a *App) addExpense(ctx context.Context) error {
	location, err := getSimpleText(a.reader, "Enter location", os.Stdout)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Enter date (yyyy-mm-dd)", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := GetAmount(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return err
	}
	comment, err := getSimpleText(a.reader, "Enter comment (optional)", os.Stdout)
	if err != nil {
		return err
	}

	photoPath := ""
	file, err := getSimpleText(a.reader, "Receipt photo file (optional)", os.Stdout)
	if err != nil {
		return err
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("cannot read photo: %w", err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(file))
		photoPath, err = a.client.UploadPhoto(ctx, data, contentType)
		if err != nil {
			return fmt.Errorf("photo upload failed: %w", err)
		}
		fmt.Println("Photo uploaded.")
	}

	created, err := a.client.AddExpense(ctx, api.AddExpenseRequest{
		Location:  location,
		Date:      date,
		Amount:    amount,
		Comment:   comment,
		PhotoPath: photoPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recorded expense %s (%.2f).\n", created.ID, created.Amount)
	return nil
}

// removeExpense deletes one expense. Removing a trip's last expense removes
// the trip as well, server-side.
func (a *App) removeExpense(ctx context.Context) error {
	expenseID, err := getSimpleText(a.reader, "Enter expense id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.client.RemoveExpense(ctx, expenseID); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}
