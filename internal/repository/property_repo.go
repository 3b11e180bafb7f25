package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"staybnb/internal/db"
)

// PropertyQuery holds the filters resolved in SQL. The rest of the search criteria
// are applied to the rows afterwards.
type PropertyQuery struct {
	Location string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	ViewerID int
	Limit    int
}

type PropertyRepository interface {
	Create(ctx context.Context, p *db.Property) error
	Update(ctx context.Context, p *db.Property) error
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id, viewerID int) (*db.Property, error)
	ListByHost(ctx context.Context, hostID int) ([]db.Property, error)
	Search(ctx context.Context, q PropertyQuery) ([]db.Property, error)
	AddFavorite(ctx context.Context, userID, propertyID int) error
	RemoveFavorite(ctx context.Context, userID, propertyID int) error
}

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `p.id, p.host_id, p.title, p.description, p.property_type, p.address, p.city, p.state,
	p.country, p.zip_code, p.latitude, p.longitude, p.max_guests, p.bedrooms, p.beds, p.bathrooms,
	p.price_per_night, p.cleaning_fee, p.security_deposit, p.weekly_discount, p.monthly_discount,
	p.amenities, p.house_rules, p.images, p.instant_book, p.status, p.created_at, p.updated_at`

func scanProperty(row rowScanner) (*db.Property, error) {
	var p db.Property
	err := row.Scan(&p.ID, &p.HostID, &p.Title, &p.Description, &p.PropertyType, &p.Address, &p.City, &p.State,
		&p.Country, &p.ZipCode, &p.Latitude, &p.Longitude, &p.MaxGuests, &p.Bedrooms, &p.Beds, &p.Bathrooms,
		&p.PricePerNight, &p.CleaningFee, &p.SecurityDeposit, &p.WeeklyDiscount, &p.MonthlyDiscount,
		pq.Array(&p.Amenities), &p.HouseRules, pq.Array(&p.Images), &p.InstantBook, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.IsFavorite)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *db.Property) error {
	query := `
		INSERT INTO properties
		(host_id, title, description, property_type, address, city, state, country, zip_code, latitude, longitude,
		 max_guests, bedrooms, beds, bathrooms, price_per_night, cleaning_fee, security_deposit, weekly_discount,
		 monthly_discount, amenities, house_rules, images, instant_book, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.HostID, p.Title, p.Description, p.PropertyType, p.Address, p.City, p.State, p.Country, p.ZipCode,
		p.Latitude, p.Longitude, p.MaxGuests, p.Bedrooms, p.Beds, p.Bathrooms, p.PricePerNight, p.CleaningFee,
		p.SecurityDeposit, p.WeeklyDiscount, p.MonthlyDiscount, pq.Array(nonNil(p.Amenities)), p.HouseRules,
		pq.Array(nonNil(p.Images)), p.InstantBook, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting property: %w", err)
	}
	return nil
}

func (r *propertyRepository) Update(ctx context.Context, p *db.Property) error {
	query := `
		UPDATE properties SET
			title = $2, description = $3, property_type = $4, address = $5, city = $6, state = $7, country = $8,
			zip_code = $9, latitude = $10, longitude = $11, max_guests = $12, bedrooms = $13, beds = $14,
			bathrooms = $15, price_per_night = $16, cleaning_fee = $17, security_deposit = $18,
			weekly_discount = $19, monthly_discount = $20, amenities = $21, house_rules = $22, images = $23,
			instant_book = $24, status = $25, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Description, p.PropertyType, p.Address, p.City, p.State, p.Country, p.ZipCode,
		p.Latitude, p.Longitude, p.MaxGuests, p.Bedrooms, p.Beds, p.Bathrooms, p.PricePerNight, p.CleaningFee,
		p.SecurityDeposit, p.WeeklyDiscount, p.MonthlyDiscount, pq.Array(nonNil(p.Amenities)), p.HouseRules,
		pq.Array(nonNil(p.Images)), p.InstantBook, p.Status,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating property %d: %w", p.ID, err)
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting property %d: %w", id, err)
	}
	return nil
}

// GetByID returns nil, nil when the property does not exist. viewerID marks the
// favorite flag; pass 0 for anonymous requests.
func (r *propertyRepository) GetByID(ctx context.Context, id, viewerID int) (*db.Property, error) {
	query := `
		SELECT ` + propertyColumns + `, (f.user_id IS NOT NULL) AS is_favorite
		FROM properties p
		LEFT JOIN favorites f ON f.property_id = p.id AND f.user_id = $2
		WHERE p.id = $1`
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id, viewerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying property %d: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) ListByHost(ctx context.Context, hostID int) ([]db.Property, error) {
	query := `
		SELECT ` + propertyColumns + `, FALSE AS is_favorite
		FROM properties p
		WHERE p.host_id = $1
		ORDER BY p.created_at DESC`
	return r.list(ctx, query, hostID)
}

func (r *propertyRepository) Search(ctx context.Context, q PropertyQuery) ([]db.Property, error) {
	query := `
		SELECT ` + propertyColumns + `, (f.user_id IS NOT NULL) AS is_favorite
		FROM properties p
		LEFT JOIN favorites f ON f.property_id = p.id AND f.user_id = $1
		WHERE p.status = 'active'`
	args := []interface{}{q.ViewerID}
	idx := 2

	if q.Location != "" {
		n := "$" + strconv.Itoa(idx)
		query += " AND (p.city ILIKE " + n + " OR p.state ILIKE " + n + " OR p.country ILIKE " + n + " OR p.address ILIKE " + n + ")"
		args = append(args, "%"+q.Location+"%")
		idx++
	}
	if q.Guests > 0 {
		query += " AND p.max_guests >= $" + strconv.Itoa(idx)
		args = append(args, q.Guests)
		idx++
	}
	if !q.CheckIn.IsZero() && !q.CheckOut.IsZero() {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.property_id = p.id
			AND b.status IN ('pending', 'confirmed')
			AND b.check_in < $` + strconv.Itoa(idx+1) + `
			AND b.check_out > $` + strconv.Itoa(idx) + `)`
		args = append(args, q.CheckIn, q.CheckOut)
		idx += 2
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}
	query += " ORDER BY p.created_at DESC LIMIT $" + strconv.Itoa(idx)
	args = append(args, limit)

	return r.list(ctx, query, args...)
}

func (r *propertyRepository) list(ctx context.Context, query string, args ...interface{}) ([]db.Property, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying properties: %w", err)
	}
	defer rows.Close()

	properties := []db.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating property rows: %w", err)
	}
	return properties, nil
}

func (r *propertyRepository) AddFavorite(ctx context.Context, userID, propertyID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, property_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, propertyID)
	if err != nil {
		return fmt.Errorf("error adding favorite: %w", err)
	}
	return nil
}

func (r *propertyRepository) RemoveFavorite(ctx context.Context, userID, propertyID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`, userID, propertyID)
	if err != nil {
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}
