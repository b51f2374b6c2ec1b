package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/ewright/todo-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func postJSON(t *testing.T, url string, payload map[string]string) *http.Response {
	t.Helper()

	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"name":     "Alice",
				"email":    "alice@example.com",
				"password": "secret1",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.RegisterResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "Registration successful. Please check your email for verification code.", result.Message)
				assert.Equal(t, "alice@example.com", result.User.Email)
				assert.Regexp(t, sixDigits, result.VerificationCode)
			},
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"name":     "Other Alice",
				"email":    "existing@example.com",
				"password": "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("existing@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, resp *http.Response) {
				testutil.AssertErrorResponse(t, resp, http.StatusConflict, "User already exists with this email")
			},
		},
		{
			name: "missing email",
			request: map[string]string{
				"name":     "Alice",
				"password": "secret1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			request: map[string]string{
				"name":  "Alice",
				"email": "alice@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty request body",
			request:        map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Reset(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, ts.APIURL("/auth/register"), tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		expectedError  string
	}{
		{
			name: "successful verification",
			request: map[string]string{
				"code":  "123456",
				"email": "bob@example.com",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("bob@example.com").
					Unverified("123456").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown email",
			request: map[string]string{
				"code":  "123456",
				"email": "nobody@example.com",
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "User not found",
		},
		{
			name: "wrong code",
			request: map[string]string{
				"code":  "000000",
				"email": "bob@example.com",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("bob@example.com").
					Unverified("123456").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid verification code",
		},
		{
			name: "already verified",
			request: map[string]string{
				"code":  "123456",
				"email": "bob@example.com",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("bob@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Reset(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, ts.APIURL("/auth/verify-email"), tt.request)
			defer resp.Body.Close()

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var result struct {
				Message string `json:"message"`
				User    struct {
					ID    string `json:"id"`
					Email string `json:"email"`
				} `json:"user"`
			}
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, "Email verified successfully", result.Message)
			assert.Equal(t, "bob@example.com", result.User.Email)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		expectedError  string
	}{
		{
			name: "successful login",
			request: map[string]string{
				"email":    "carol@example.com",
				"password": "correctpassword",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("carol@example.com").
					WithPassword("correctpassword").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    "carol@example.com",
				"password": "wrongpassword",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("carol@example.com").
					WithPassword("correctpassword").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid email or password",
		},
		{
			name: "unknown email",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": "anypassword",
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid email or password",
		},
		{
			name: "unverified user",
			request: map[string]string{
				"email":    "carol@example.com",
				"password": "correctpassword",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("carol@example.com").
					WithPassword("correctpassword").
					Unverified("123456").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Please verify your email before logging in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Reset(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, ts.APIURL("/auth/login"), tt.request)
			defer resp.Body.Close()

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var result testutil.LoginResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, "Login successful", result.Message)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "carol@example.com", result.User.Email)
		})
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("authenticated", func(t *testing.T) {
		ts.Reset(t)

		user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/profile"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result struct {
			User struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.ID.String(), result.User.ID)
		assert.Equal(t, user.Email, result.User.Email)
	})

	t.Run("no token", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/auth/profile"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Not authenticated")
	})

	t.Run("malformed token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/profile"), nil, "garbage.token.value")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Not authenticated")
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ts.Reset(t)

		user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

		// The user record disappears out from under a still-valid token
		require.NoError(t, ts.DB.DB.Exec("DELETE FROM users WHERE id = ?", user.ID).Error)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/profile"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User not found")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	stored, err := ts.Redis.Sessions.Get(ctx, user.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/logout"), nil, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	stored, err = ts.Redis.Sessions.Get(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Empty(t, stored)
}
