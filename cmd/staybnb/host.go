package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/listing"
)

func (a *app) hostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage bookings on your properties",
	}

	var status string
	bookings := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings on your properties",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			list, err := a.client.HostBookings(cmd.Context(), status)
			if err != nil {
				return err
			}
			printBookings(cmd.OutOrStdout(), list)
			return nil
		},
	}
	bookings.Flags().StringVar(&status, "status", "", "pending, confirmed, completed or cancelled")

	accept := &cobra.Command{
		Use:   "accept <booking-id>",
		Short: "Accept a paid booking request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.bookingAction(cmd, args[0], a.client.AcceptBooking)
		},
	}
	decline := &cobra.Command{
		Use:   "decline <booking-id>",
		Short: "Decline a booking request; a paid request is refunded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.bookingAction(cmd, args[0], a.client.DeclineBooking)
		},
	}

	cmd.AddCommand(bookings, accept, decline)
	return cmd
}

func (a *app) bookingAction(cmd *cobra.Command, arg string, fn func(ctx context.Context, id int) (*entities.BookingDetails, error)) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	b, err := fn(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is now %s (payment %s)\n", b.Code, b.Status, b.PaymentStatus)
	return nil
}

func (a *app) listingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Create, edit and remove your listings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your properties",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			properties, err := a.client.MyProperties(cmd.Context())
			if err != nil {
				return err
			}
			printProperties(cmd.OutOrStdout(), properties)
			return nil
		},
	}

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a listing from a JSON draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			w := listing.NewWizard()
			if err := readDraft(file, &w.Draft); err != nil {
				return err
			}
			return a.submit(cmd, w)
		},
	}
	create.Flags().StringVar(&file, "file", "", "draft JSON file")
	_ = create.MarkFlagRequired("file")

	var editFile string
	edit := &cobra.Command{
		Use:   "edit <property-id>",
		Short: "Edit a listing; fields in the JSON file override the current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client.GetProperty(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := listing.EditWizard(*p)
			if err := readDraft(editFile, &w.Draft); err != nil {
				return err
			}
			w.Draft.PropertyID = p.ID
			return a.submit(cmd, w)
		},
	}
	edit.Flags().StringVar(&editFile, "file", "", "draft JSON file")
	_ = edit.MarkFlagRequired("file")

	remove := &cobra.Command{
		Use:   "delete <property-id>",
		Short: "Delete a listing without upcoming bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.client.DeleteProperty(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, create, edit, remove)
	return cmd
}

// submit walks the wizard through every step, stopping at the first one that
// does not validate.
func (a *app) submit(cmd *cobra.Command, w *listing.Wizard) error {
	out := cmd.OutOrStdout()
	for {
		step, last := w.Step(), w.IsLast()
		if errs := w.Next(); errs != nil {
			return fmt.Errorf("step %q: %w", step, apperrors.NewValidationError(errs))
		}
		fmt.Fprintf(out, "✓ %s\n", step)
		if last {
			break
		}
	}
	p, err := w.Submit(cmd.Context(), a.client)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved listing %d: %s (%s)\n", p.ID, p.Title, p.Status)
	return nil
}

func readDraft(path string, d *listing.Draft) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading draft: %w", err)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("parsing draft %s: %w", path, err)
	}
	return nil
}
