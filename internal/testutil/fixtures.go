package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	password    string
	username    *string
	displayName string
	showEmail   bool
	showValues  bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:      fmt.Sprintf("collector_%s@example.com", uuid.New().String()[:8]),
		password:   "testpassword123",
		showValues: true,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = &username
	return b
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithVisibility sets what the public collection view exposes
func (b *UserBuilder) WithVisibility(showEmail, showValues bool) *UserBuilder {
	b.showEmail = showEmail
	b.showValues = showValues
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Username:     b.username,
		DisplayName:  b.displayName,
		ShowEmail:    b.showEmail,
		ShowValues:   b.showValues,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string `json:"token"`
}

// BuildAndAuthenticate stores the user and logs in through the API,
// returning the user and its bearer token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{
		"email":    user.Email,
		"password": password,
	})
	resp, err := http.Post(ts.APIURL("/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, login.Token
}

// ItemBuilder creates collection items. Defaults to a 2020 South African
// 5 Rand coin.
type ItemBuilder struct {
	owner        *domain.User
	category     domain.Category
	country      string
	year         *int
	denomination string
	value        *float64
	quantity     int
	notes        string
	referenceURL string
	imageURL     string
	weight       float64
	purity       float64
}

func NewItemBuilder() *ItemBuilder {
	year := 2020
	return &ItemBuilder{
		category:     domain.CategoryCoin,
		country:      "South Africa",
		year:         &year,
		denomination: "5 Rand",
		quantity:     1,
	}
}

func (b *ItemBuilder) WithOwner(user *domain.User) *ItemBuilder {
	b.owner = user
	return b
}

func (b *ItemBuilder) WithCountry(country string) *ItemBuilder {
	b.country = country
	return b
}

// WithYear sets the year; zero means unknown
func (b *ItemBuilder) WithYear(year int) *ItemBuilder {
	if year == 0 {
		b.year = nil
		return b
	}
	b.year = &year
	return b
}

func (b *ItemBuilder) WithDenomination(denomination string) *ItemBuilder {
	b.denomination = denomination
	return b
}

func (b *ItemBuilder) WithValue(value float64) *ItemBuilder {
	b.value = &value
	return b
}

func (b *ItemBuilder) WithQuantity(quantity int) *ItemBuilder {
	b.quantity = quantity
	return b
}

func (b *ItemBuilder) WithNotes(notes string) *ItemBuilder {
	b.notes = notes
	return b
}

func (b *ItemBuilder) WithReferenceURL(url string) *ItemBuilder {
	b.referenceURL = url
	return b
}

func (b *ItemBuilder) WithImageURL(url string) *ItemBuilder {
	b.imageURL = url
	return b
}

func (b *ItemBuilder) WithCategory(category domain.Category) *ItemBuilder {
	b.category = category
	return b
}

// WithBullion makes the item bullion of the given metal category
func (b *ItemBuilder) WithBullion(category domain.Category, weightGrams, purityPercent float64) *ItemBuilder {
	b.category = category
	b.weight = weightGrams
	b.purity = purityPercent
	return b
}

// Item returns the unsaved, classified item
func (b *ItemBuilder) Item(t *testing.T) *domain.Item {
	t.Helper()

	details, err := domain.NewItemDetails(b.category, b.denomination, &b.weight, &b.purity)
	if err != nil {
		t.Fatalf("invalid item details: %v", err)
	}

	item := &domain.Item{
		ID:           uuid.New(),
		Country:      b.country,
		Year:         b.year,
		Value:        b.value,
		Quantity:     b.quantity,
		Notes:        b.notes,
		ReferenceURL: b.referenceURL,
		ImageURL:     b.imageURL,
		Details:      details,
	}
	if b.owner != nil {
		item.UserID = b.owner.ID
	}
	item.Classify()
	return item
}

// Build stores the item through the repository
func (b *ItemBuilder) Build(t *testing.T, repo repository.ItemRepository) *domain.Item {
	t.Helper()

	if b.owner == nil {
		t.Fatalf("item builder needs an owner")
	}
	item := b.Item(t)
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}
