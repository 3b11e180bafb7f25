package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"staybnb/internal/calendar"
	"staybnb/internal/client"
	"staybnb/internal/db"
	"staybnb/internal/entities"
	"staybnb/internal/search"
	"staybnb/internal/utils"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		c                  search.Criteria
		checkIn, checkOut  string
		amenities, sortKey string
		instantBook        string
	)
	cmd := &cobra.Command{
		Use:   "search [location]",
		Short: "Search stays",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.Location = args[0]
			}
			var err error
			if c.CheckIn, err = optionalDate(checkIn); err != nil {
				return err
			}
			if c.CheckOut, err = optionalDate(checkOut); err != nil {
				return err
			}
			if amenities != "" {
				c.Amenities = strings.Split(amenities, ",")
			}
			if instantBook != "" {
				v, err := strconv.ParseBool(instantBook)
				if err != nil {
					return fmt.Errorf("--instant-book: %w", err)
				}
				c.InstantBook = &v
			}
			c.Sort = search.Sort(sortKey)

			properties, err := a.client.SearchProperties(cmd.Context(), c)
			if err != nil {
				return err
			}
			printProperties(cmd.OutOrStdout(), search.Apply(properties, c))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	f.StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	f.IntVar(&c.Guests, "guests", 0, "number of guests")
	f.Float64Var(&c.MinPrice, "min-price", 0, "minimum nightly price")
	f.Float64Var(&c.MaxPrice, "max-price", 0, "maximum nightly price")
	f.StringVar(&c.PropertyType, "type", "", "property type")
	f.IntVar(&c.MinBedrooms, "bedrooms", 0, "minimum bedrooms")
	f.Float64Var(&c.MinBathrooms, "bathrooms", 0, "minimum bathrooms")
	f.StringVar(&amenities, "amenities", "", "comma-separated amenities")
	f.StringVar(&instantBook, "instant-book", "", "true or false")
	f.StringVar(&sortKey, "sort", string(search.SortRelevance), "relevance, price_low_to_high, price_high_to_low or favorite")
	return cmd
}

func printProperties(w io.Writer, properties []db.Property) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tGUESTS\tNIGHTLY\tINSTANT\tFAV")
	for _, p := range properties {
		fav := ""
		if p.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s, %s\t%d\t%.2f\t%t\t%s\n",
			p.ID, p.Title, p.City, p.Country, p.MaxGuests, p.PricePerNight, p.InstantBook, fav)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d stays\n", len(properties))
}

func (a *app) favoriteCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "favorite <property-id>",
		Short: "Add a stay to favorites, or remove it with --remove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if remove {
				return a.client.RemoveFavorite(cmd.Context(), id)
			}
			return a.client.AddFavorite(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove from favorites")
	return cmd
}

func calendarCmd() *cobra.Command {
	var month, checkIn, checkOut string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month and the selected stay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel := calendar.NewSelector(time.Now)
			for _, s := range []string{checkIn, checkOut} {
				d, err := optionalDate(s)
				if err != nil {
					return err
				}
				if d.IsZero() {
					continue
				}
				if err := sel.Pick(d); err != nil {
					return fmt.Errorf("%s: %w", s, err)
				}
			}

			visible := sel.Today()
			if month != "" {
				m, err := time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return fmt.Errorf("--month: %w", err)
				}
				visible = m
			} else if in, ok := sel.CheckIn(); ok {
				visible = in
			}

			printGrid(cmd.OutOrStdout(), visible, calendar.Grid(visible, sel))
			if in, out, ok := sel.Range(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s to %s, %d nights\n",
					in.Format(utils.DateLayout), out.Format(utils.DateLayout), sel.Nights())
			}
			return nil
		},
	}
	// Runs offline, without restoring the session.
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM)")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	return cmd
}

// printGrid marks check-in with [, check-out with ], nights in between with *
// and past days with a dot.
func printGrid(w io.Writer, visible time.Time, days [calendar.GridDays]calendar.Day) {
	fmt.Fprintf(w, "%s %d\n", visible.Month(), visible.Year())
	fmt.Fprintln(w, " Su  Mo  Tu  We  Th  Fr  Sa")
	for i, d := range days {
		mark := " "
		switch {
		case d.IsCheckIn:
			mark = "["
		case d.IsCheckOut:
			mark = "]"
		case d.InRange:
			mark = "*"
		case d.Disabled:
			mark = "."
		}
		if d.InMonth {
			fmt.Fprintf(w, "%s%2d ", mark, d.Date.Day())
		} else {
			fmt.Fprint(w, "    ")
		}
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
}

func (a *app) quoteCmd() *cobra.Command {
	var in stayFlags
	cmd := &cobra.Command{
		Use:   "quote <property-id>",
		Short: "Price a stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := in.request(args[0])
			if err != nil {
				return err
			}
			q := client.NewQuoter(a.client)
			b, err := q.Update(cmd.Context(), client.QuoteInput{
				PropertyID: req.PropertyID,
				CheckIn:    req.CheckIn,
				CheckOut:   req.CheckOut,
				Guests:     req.Guests,
			})
			if err != nil {
				return err
			}
			printQuote(cmd.OutOrStdout(), b)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func printQuote(w io.Writer, b *entities.PriceBreakdown) {
	cur := strings.ToUpper(b.Currency)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%.2f x %d nights\t%.2f %s\t\n", b.NightlyRate, b.Nights, b.Subtotal, cur)
	if b.Discount > 0 {
		fmt.Fprintf(tw, "Discount\t-%.2f %s\t\n", b.Discount, cur)
	}
	fmt.Fprintf(tw, "Cleaning fee\t%.2f %s\t\n", b.CleaningFee, cur)
	fmt.Fprintf(tw, "Service fee\t%.2f %s\t\n", b.ServiceFee, cur)
	fmt.Fprintf(tw, "Taxes\t%.2f %s\t\n", b.Tax, cur)
	fmt.Fprintf(tw, "Total\t%.2f %s\t\n", b.Total, cur)
	tw.Flush()
}

func (a *app) bookCmd() *cobra.Command {
	var (
		in              stayFlags
		paymentMethod   string
		specialRequests string
	)
	cmd := &cobra.Command{
		Use:   "book <property-id>",
		Short: "Book and pay for a stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			req, err := in.request(args[0])
			if err != nil {
				return err
			}
			intent, err := a.client.CreateIntent(cmd.Context(), entities.CreateIntentRequest{
				PriceRequest:    req,
				SpecialRequests: specialRequests,
			})
			if err != nil {
				return err
			}
			printQuote(cmd.OutOrStdout(), &intent.Pricing)

			res, err := a.client.ConfirmPayment(cmd.Context(), entities.ConfirmPaymentRequest{
				BookingID:       intent.BookingID,
				PaymentIntentID: intent.PaymentIntentID,
				PaymentMethodID: paymentMethod,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is %s (payment %s)\n", intent.BookingCode, res.Status, res.PaymentStatus)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "Stripe payment method id, e.g. pm_card_visa in test mode")
	cmd.Flags().StringVar(&specialRequests, "requests", "", "special requests for the host")
	_ = cmd.MarkFlagRequired("payment-method")
	return cmd
}

func (a *app) tripsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trips",
		Short: "List your bookings as a guest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			bookings, err := a.client.Trips(cmd.Context())
			if err != nil {
				return err
			}
			printBookings(cmd.OutOrStdout(), bookings)
			return nil
		},
	}
}

func (a *app) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking; paid bookings are refunded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.bookingAction(cmd, args[0], a.client.CancelBooking)
		},
	}
}

func printBookings(w io.Writer, bookings []entities.BookingDetails) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tPROPERTY\tCHECK-IN\tCHECK-OUT\tGUESTS\tTOTAL\tSTATUS\tPAYMENT")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%.2f\t%s\t%s\n",
			b.ID, b.Code, b.Property.Title,
			b.CheckIn.Format(utils.DateLayout), b.CheckOut.Format(utils.DateLayout),
			b.Guests, b.Total, b.Status, b.PaymentStatus)
	}
	tw.Flush()
}

// stayFlags are the inputs shared by quote and book.
type stayFlags struct {
	checkIn, checkOut string
	guests            int
}

func (s *stayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&s.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&s.guests, "guests", 1, "number of guests")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")
}

func (s *stayFlags) request(propertyID string) (entities.PriceRequest, error) {
	id, err := parseID(propertyID)
	if err != nil {
		return entities.PriceRequest{}, err
	}
	in, err := utils.ParseDate(s.checkIn, time.Local)
	if err != nil {
		return entities.PriceRequest{}, fmt.Errorf("--check-in: %w", err)
	}
	out, err := utils.ParseDate(s.checkOut, time.Local)
	if err != nil {
		return entities.PriceRequest{}, fmt.Errorf("--check-out: %w", err)
	}
	return entities.PriceRequest{PropertyID: id, CheckIn: in, CheckOut: out, Guests: s.guests}, nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := utils.ParseDate(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
