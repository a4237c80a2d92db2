package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/staynest-backend/internal/config"
	"github.com/staynest/staynest-backend/internal/handlers"
	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/routes"
	"github.com/staynest/staynest-backend/internal/services"
	"github.com/staynest/staynest-backend/internal/store/storetest"
)

// captureMailer records outgoing mail so tests can read the OTP back out.
type captureMailer struct {
	lastTo   string
	lastBody string
}

func (m *captureMailer) Send(to, subject, htmlBody string) error {
	m.lastTo = to
	m.lastBody = htmlBody
	return nil
}

type cdnUploader struct{ n int }

func (u *cdnUploader) UploadBuffer(ctx context.Context, data []byte, folder, mimetype string) (string, error) {
	u.n++
	return fmt.Sprintf("https://cdn.example/%s/%d", folder, u.n), nil
}

type testEnv struct {
	srv   *httptest.Server
	users *storetest.MemUserStore
	homes *storetest.MemHomeStore
	mail  *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := storetest.NewMemUserStore()
	homes := storetest.NewMemHomeStore()
	mail := &captureMailer{}

	sessions := services.NewSessionService(rdb)
	h := handlers.New(
		&config.Config{},
		sessions,
		services.NewIdentityService(users),
		services.NewOTPService(users, mail),
		services.NewListingService(homes, users, &cdnUploader{}),
		services.NewFavouritesService(users, homes),
		nil,
	)

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, middleware.NewSessionAuth(sessions))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, users: users, homes: homes, mail: mail}
}

// client returns an HTTP client with its own cookie jar, standing in for one
// browser session.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *testEnv) signup(t *testing.T, c *http.Client, email, usertype string) {
	t.Helper()
	status, body := doJSON(t, c, http.MethodPost, e.srv.URL+"/signup", map[string]any{
		"firstname":       "Test",
		"lastname":        "User",
		"email":           email,
		"password":        "hunter22",
		"confirmpassword": "hunter22",
		"usertype":        usertype,
		"terms":           true,
	})
	require.Equal(t, http.StatusCreated, status, "signup: %v", body)
}

func (e *testEnv) login(t *testing.T, c *http.Client, email, password string) map[string]any {
	t.Helper()
	status, body := doJSON(t, c, http.MethodPost, e.srv.URL+"/login", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login: %v", body)
	return body
}

// addHome posts the multipart listing form and returns the created home's id.
func (e *testEnv) addHome(t *testing.T, c *http.Client, fields map[string]string) (string, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/host/addhome", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "addhome: %v", body)

	home := body["home"].(map[string]any)
	return home["id"].(string), home
}

func TestHostSignupLoginAddHome(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	env.signup(t, c, "host@x.com", "host")
	loginBody := env.login(t, c, "host@x.com", "hunter22")
	user := loginBody["user"].(map[string]any)
	assert.Equal(t, "host", user["usertype"])

	_, home := env.addHome(t, c, map[string]string{
		"homename":    "Cabin",
		"price":       "100",
		"description": "d",
		"location":    "Hills",
	})
	assert.Equal(t, "Cabin", home["homename"])
	assert.Equal(t, 100.0, home["price"])
	assert.Empty(t, home["ratings"])

	status, body := doJSON(t, c, http.MethodGet, env.srv.URL+"/host/ownhome", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["homes"].([]any), 1)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	status, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/signup", map[string]any{
		"email":    "bad",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["errors"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	env.signup(t, c, "guest@x.com", "guest")

	// Unknown account and wrong password produce the same response.
	for _, creds := range []map[string]any{
		{"email": "nobody@x.com", "password": "hunter22"},
		{"email": "guest@x.com", "password": "wrong-password"},
	} {
		status, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/login", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid email or password", body["errormessage"])
	}
}

func TestCurrentUserAndLogout(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	env.signup(t, c, "guest@x.com", "guest")
	env.login(t, c, "guest@x.com", "hunter22")

	status, body := doJSON(t, c, http.MethodGet, env.srv.URL+"/current-user", nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "guest@x.com", user["email"])

	status, _ = doJSON(t, c, http.MethodGet, env.srv.URL+"/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, c, http.MethodGet, env.srv.URL+"/current-user", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["user"])

	status, _ = doJSON(t, c, http.MethodGet, env.srv.URL+"/", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBrowseRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	for _, path := range []string{"/", "/favourite"} {
		status, body := doJSON(t, c, http.MethodGet, env.srv.URL+path, nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "Not authenticated", body["errormessage"])
	}
}

func TestHostRoutesRejectGuests(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	env.signup(t, c, "guest@x.com", "guest")
	env.login(t, c, "guest@x.com", "hunter22")

	status, _ := doJSON(t, c, http.MethodGet, env.srv.URL+"/host/addhome", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, c, http.MethodGet, env.srv.URL+"/host/ownhome", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRatingFlow(t *testing.T) {
	env := newTestEnv(t)

	host := env.client(t)
	env.signup(t, host, "host@x.com", "host")
	env.login(t, host, "host@x.com", "hunter22")
	homeID, _ := env.addHome(t, host, map[string]string{
		"homename": "Cabin", "price": "100", "description": "d", "location": "Hills",
	})

	guest := env.client(t)
	env.signup(t, guest, "guest@x.com", "guest")
	env.login(t, guest, "guest@x.com", "hunter22")

	rateURL := env.srv.URL + "/home/" + homeID + "/rate"
	status, body := doJSON(t, guest, http.MethodPost, rateURL, map[string]any{"stars": 5, "comment": "x"})
	require.Equal(t, http.StatusOK, status, "%v", body)

	// Rating again replaces the earlier rating instead of adding a second one.
	status, body = doJSON(t, guest, http.MethodPost, rateURL, map[string]any{"stars": 2, "comment": "y"})
	require.Equal(t, http.StatusOK, status)
	ratings := body["ratings"].([]any)
	require.Len(t, ratings, 1)
	rating := ratings[0].(map[string]any)
	assert.Equal(t, 2.0, rating["stars"])
	assert.Equal(t, "y", rating["comment"])

	// Hosts cannot rate their own listing.
	status, body = doJSON(t, host, http.MethodPost, rateURL, map[string]any{"stars": 5})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You cannot rate your own home.", body["error"])

	status, body = doJSON(t, guest, http.MethodGet, env.srv.URL+"/home/"+homeID, nil)
	require.Equal(t, http.StatusOK, status)
	view := body["home"].(map[string]any)
	assert.Equal(t, 2.0, view["averageRating"])
	assert.Equal(t, "host@x.com", view["host"].(map[string]any)["email"])
}

func TestFavouritesFlow(t *testing.T) {
	env := newTestEnv(t)

	host := env.client(t)
	env.signup(t, host, "host@x.com", "host")
	env.login(t, host, "host@x.com", "hunter22")
	homeID, _ := env.addHome(t, host, map[string]string{
		"homename": "Cabin", "price": "100", "description": "d", "location": "Hills",
	})

	guest := env.client(t)
	env.signup(t, guest, "guest@x.com", "guest")
	env.login(t, guest, "guest@x.com", "hunter22")

	// Double add keeps a single entry.
	for i := 0; i < 2; i++ {
		status, body := doJSON(t, guest, http.MethodPost, env.srv.URL+"/favourite/"+homeID, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["favourite"].([]any), 1)
	}

	status, body := doJSON(t, guest, http.MethodGet, env.srv.URL+"/favourite", nil)
	require.Equal(t, http.StatusOK, status)
	favs := body["favourite"].([]any)
	require.Len(t, favs, 1)
	assert.Equal(t, "Cabin", favs[0].(map[string]any)["homename"])

	status, body = doJSON(t, guest, http.MethodPost, env.srv.URL+"/favourite/remove/"+homeID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["favourite"].([]any))

	// Removing again stays a no-op.
	status, _ = doJSON(t, guest, http.MethodPost, env.srv.URL+"/favourite/remove/"+homeID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestEditAndDeleteHomeOwnership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.client(t)
	env.signup(t, owner, "owner@x.com", "host")
	env.login(t, owner, "owner@x.com", "hunter22")
	homeID, _ := env.addHome(t, owner, map[string]string{
		"homename": "Cabin", "price": "100", "description": "d", "location": "Hills",
	})

	rival := env.client(t)
	env.signup(t, rival, "rival@x.com", "host")
	env.login(t, rival, "rival@x.com", "hunter22")

	// Another host passes the role gate but not the ownership check.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("homename", "Hijacked"))
	require.NoError(t, w.Close())
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/host/edithome/"+homeID, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := rival.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	status, _ := doJSON(t, rival, http.MethodPost, env.srv.URL+"/host/deletehome/"+homeID, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := doJSON(t, owner, http.MethodPost, env.srv.URL+"/host/deletehome/"+homeID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Home deleted successfully", body["message"])
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func TestForgotPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	env.signup(t, c, "guest@x.com", "guest")

	status, _ := doJSON(t, c, http.MethodPost, env.srv.URL+"/forgot-password/send-otp",
		map[string]any{"email": "guest@x.com"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "guest@x.com", env.mail.lastTo)

	code := otpPattern.FindString(env.mail.lastBody)
	require.Len(t, code, 6, "mail body should carry the code")

	status, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/forgot-password/verify-otp", map[string]any{
		"email":           "guest@x.com",
		"otp":             code,
		"newPassword":     "new-secret",
		"confirmPassword": "new-secret",
	})
	require.Equal(t, http.StatusOK, status, "%v", body)

	// Old password gone, new one works, code is single-use.
	status, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/login",
		map[string]any{"email": "guest@x.com", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, status)
	env.login(t, c, "guest@x.com", "new-secret")

	status, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/forgot-password/verify-otp", map[string]any{
		"email":           "guest@x.com",
		"otp":             code,
		"newPassword":     "another-one",
		"confirmPassword": "another-one",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	status, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/forgot-password/send-otp",
		map[string]any{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Account not found with this email", body["error"])
}
