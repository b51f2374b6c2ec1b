package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ewright/todo-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
	verified bool
	code     string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("Test User %s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
		verified: true,
	}
}

// WithName sets the name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unverified marks the user as not yet verified, holding the given code
func (b *UserBuilder) Unverified(code string) *UserBuilder {
	b.verified = false
	b.code = code
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:               uuid.New(),
		Name:             b.name,
		Email:            b.email,
		PasswordHash:     string(hashedPassword),
		Verified:         b.verified,
		VerificationCode: b.code,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// RegisterResponse matches the API register response
type RegisterResponse struct {
	Message string `json:"message"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	VerificationCode string `json:"verificationCode"`
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// TodoResponse matches the API single-todo response
type TodoResponse struct {
	Todo domain.Todo `json:"todo"`
}

// TodoListResponse matches the API todo list response
type TodoListResponse struct {
	Todos []domain.Todo `json:"todos"`
}

// BuildAndAuthenticate runs the full register → verify-email → login flow
// through the API and returns the user and session token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	regResp := postJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	defer regResp.Body.Close()
	if regResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected register status code: %d", regResp.StatusCode)
	}

	var reg RegisterResponse
	if err := json.NewDecoder(regResp.Body).Decode(&reg); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}

	verResp := postJSON(t, ts.APIURL("/auth/verify-email"), map[string]string{
		"code":  reg.VerificationCode,
		"email": b.email,
	})
	defer verResp.Body.Close()
	if verResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected verify status code: %d", verResp.StatusCode)
	}

	loginResp := postJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    b.email,
		"password": b.password,
	})
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", loginResp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(loginResp.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	userID, _ := uuid.Parse(login.User.ID)
	user := &domain.User{
		ID:    userID,
		Name:  b.name,
		Email: login.User.Email,
	}

	return user, login.Token
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to post to %s: %v", url, err)
	}
	return resp
}

// TodoBuilder creates test todos with a builder pattern
type TodoBuilder struct {
	title       string
	description string
	dueDate     *time.Time
	completed   bool
	owner       *domain.User
}

// NewTodoBuilder creates a new TodoBuilder with default values
func NewTodoBuilder() *TodoBuilder {
	return &TodoBuilder{
		title: fmt.Sprintf("Test Todo %s", uuid.New().String()[:8]),
	}
}

// WithTitle sets the title
func (b *TodoBuilder) WithTitle(title string) *TodoBuilder {
	b.title = title
	return b
}

// WithDescription sets the description
func (b *TodoBuilder) WithDescription(description string) *TodoBuilder {
	b.description = description
	return b
}

// WithDueDate sets the due date
func (b *TodoBuilder) WithDueDate(dueDate time.Time) *TodoBuilder {
	b.dueDate = &dueDate
	return b
}

// Completed marks the todo as done
func (b *TodoBuilder) Completed() *TodoBuilder {
	b.completed = true
	return b
}

// WithOwner sets the owning user
func (b *TodoBuilder) WithOwner(user *domain.User) *TodoBuilder {
	b.owner = user
	return b
}

// Build creates the todo in the database
func (b *TodoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Todo {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	now := time.Now()
	todo := &domain.Todo{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		DueDate:     b.dueDate,
		Completed:   b.completed,
		UserID:      b.owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(todo).Error; err != nil {
		t.Fatalf("failed to create todo: %v", err)
	}

	return todo
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
