package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	"staybnb/internal/listing"
	"staybnb/internal/search"
)

type propertyList struct {
	Total      int           `json:"total"`
	Properties []db.Property `json:"properties"`
}

// Auth

func (c *Client) Register(ctx context.Context, req entities.RegisterRequest) (*db.User, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *Client) Login(ctx context.Context, req entities.LoginRequest) (*db.User, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *Client) authenticate(ctx context.Context, path string, req interface{}) (*db.User, error) {
	var resp entities.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Start(resp.Token, &resp.User); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout revokes the token server side when possible and always clears the session.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.session.Token() != "" {
		err = c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	}
	c.session.Teardown()
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*db.User, error) {
	var u db.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req entities.UpdateProfileRequest) (*db.User, error) {
	var u db.User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, c.session.SetUser(&u)
}

func (c *Client) ChangePassword(ctx context.Context, req entities.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/auth/change-password", nil, req, nil)
}

// BecomeHost shows the user as a host right away and reverts if the call fails.
func (c *Client) BecomeHost(ctx context.Context, req entities.BecomeHostRequest) (*db.User, error) {
	prev := c.session.setHost(true)
	var u db.User
	if err := c.do(ctx, http.MethodPost, "/auth/become-host", nil, req, &u); err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			c.session.setHost(prev)
		}
		return nil, err
	}
	return &u, c.session.SetUser(&u)
}

// Properties

func (c *Client) SearchProperties(ctx context.Context, criteria search.Criteria) ([]db.Property, error) {
	var list propertyList
	if err := c.do(ctx, http.MethodGet, "/properties", criteria.Query(), nil, &list); err != nil {
		return nil, err
	}
	return list.Properties, nil
}

func (c *Client) GetProperty(ctx context.Context, id int) (*db.Property, error) {
	var p db.Property
	if err := c.do(ctx, http.MethodGet, propertyPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) MyProperties(ctx context.Context) ([]db.Property, error) {
	var list propertyList
	if err := c.do(ctx, http.MethodGet, "/properties/my-properties", nil, nil, &list); err != nil {
		return nil, err
	}
	return list.Properties, nil
}

// CreateProperty and UpdateProperty make the client a listing.Submitter.
func (c *Client) CreateProperty(ctx context.Context, in listing.Input) (*db.Property, error) {
	var p db.Property
	if err := c.do(ctx, http.MethodPost, "/properties", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProperty(ctx context.Context, id int, in listing.Input) (*db.Property, error) {
	var p db.Property
	if err := c.do(ctx, http.MethodPut, propertyPath(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProperty(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, propertyPath(id), nil, nil, nil)
}

func (c *Client) AddFavorite(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, propertyPath(id)+"/favorite", nil, nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, propertyPath(id)+"/favorite", nil, nil, nil)
}

func propertyPath(id int) string { return fmt.Sprintf("/properties/%d", id) }

// Payments

func (c *Client) Calculate(ctx context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error) {
	var b entities.PriceBreakdown
	if err := c.do(ctx, http.MethodPost, "/payments/calculate", nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateIntent(ctx context.Context, req entities.CreateIntentRequest) (*entities.CreateIntentResponse, error) {
	var resp entities.CreateIntentResponse
	if err := c.do(ctx, http.MethodPost, "/payments/create-intent", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, req entities.ConfirmPaymentRequest) (*entities.ConfirmPaymentResponse, error) {
	var resp entities.ConfirmPaymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments/confirm", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Refund(ctx context.Context, req entities.RefundRequest) (*entities.BookingDetails, error) {
	var b entities.BookingDetails
	if err := c.do(ctx, http.MethodPost, "/payments/refund", nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Bookings

func (c *Client) Trips(ctx context.Context) ([]entities.BookingDetails, error) {
	return c.bookingList(ctx, "/bookings/trips", nil)
}

// HostBookings lists bookings on the caller's properties; an empty status means all.
func (c *Client) HostBookings(ctx context.Context, status string) ([]entities.BookingDetails, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	return c.bookingList(ctx, "/bookings/host", q)
}

func (c *Client) bookingList(ctx context.Context, path string, q url.Values) ([]entities.BookingDetails, error) {
	var list entities.BookingList
	if err := c.do(ctx, http.MethodGet, path, q, nil, &list); err != nil {
		return nil, err
	}
	return list.Bookings, nil
}

func (c *Client) Booking(ctx context.Context, id int) (*entities.BookingDetails, error) {
	return c.booking(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d", id))
}

func (c *Client) AcceptBooking(ctx context.Context, id int) (*entities.BookingDetails, error) {
	return c.booking(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d/accept", id))
}

func (c *Client) DeclineBooking(ctx context.Context, id int) (*entities.BookingDetails, error) {
	return c.booking(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d/decline", id))
}

func (c *Client) CancelBooking(ctx context.Context, id int) (*entities.BookingDetails, error) {
	return c.booking(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d/cancel", id))
}

func (c *Client) booking(ctx context.Context, method, path string) (*entities.BookingDetails, error) {
	var b entities.BookingDetails
	if err := c.do(ctx, method, path, nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
