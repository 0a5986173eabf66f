package http

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoter/internal/repository/sqlite"
	"quoter/internal/service"
)

const testTemplates = `
{{define "index.html"}}index error={{.Error}}{{end}}
{{define "quote.html"}}quote {{.Quote.Text}} comments={{len .Comments}}{{end}}
{{define "notfound.html"}}not found{{end}}
`

func newTestRouter(t *testing.T) (*gin.Engine, service.ContentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	quotes := sqlite.NewQuoteRepository(db)
	comments := sqlite.NewCommentRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, quotes.Init(ctx))
	require.NoError(t, comments.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	router.Use(AccessLog(logger))
	router.Use(Identity())
	router.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))

	handler := NewHandler(
		service.NewAuthService(users),
		service.NewContentService(quotes, comments),
		logger,
	)
	handler.RegisterRoutes(router)
	return router, service.NewContentService(quotes, comments)
}

func postForm(router *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func identityCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == identityCookie {
			return c
		}
	}
	t.Fatal("identity cookie not set")
	return nil
}

func TestSignInIssuesSecureCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := identityCookieFrom(t, w)
	assert.True(t, cookie.Secure, "cookie must be HTTPS-only")
	assert.True(t, cookie.HttpOnly, "cookie must not be script-readable")
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	_, err := strconv.ParseInt(cookie.Value, 10, 64)
	assert.NoError(t, err, "cookie value is a string-encoded user id")
}

func TestSignInWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}})
	require.Equal(t, http.StatusFound, w.Code)

	w = postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=invalid_password", w.Header().Get("Location"))
	assert.Empty(t, w.Result().Cookies(), "no cookie on failed sign-in")
}

func TestSignInMissingFieldsRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postForm(router, "/signin", url.Values{"password": {"secret"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies(), "no cookie without a username")

	w = postForm(router, "/signin", url.Values{"username": {"ada"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())

	// neither request may have registered anything: signing in with the
	// password alone missing earlier must still be a fresh sign-up
	w = postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSignInIsStableAcrossVisits(t *testing.T) {
	router, _ := newTestRouter(t)

	first := identityCookieFrom(t, postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}}))
	second := identityCookieFrom(t, postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}}))
	assert.Equal(t, first.Value, second.Value, "repeat sign-in resolves to the same user id")
}

func TestSignOutDeletesCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/signout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := identityCookieFrom(t, w)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0, "deletion reissues the cookie expired")
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestIdentityRoundTrip(t *testing.T) {
	router, content := newTestRouter(t)
	ctx := context.Background()

	quoteID, err := content.CreateQuote(ctx, "q", "a")
	require.NoError(t, err)

	signedIn := identityCookieFrom(t, postForm(router, "/signin", url.Values{"username": {"ada"}, "password": {"secret"}}))

	path := "/quotes/" + strconv.FormatInt(quoteID, 10) + "/comments"
	w := postForm(router, path, url.Values{"text": {"mine"}}, &http.Cookie{Name: identityCookie, Value: signedIn.Value})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/quotes/"+strconv.FormatInt(quoteID, 10)+"#bottom", w.Header().Get("Location"))

	_, comments, err := content.GetQuoteWithComments(ctx, quoteID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].UserID)
	assert.Equal(t, signedIn.Value, strconv.FormatInt(*comments[0].UserID, 10))
}

func TestGarbageCookieDegradesToAnonymous(t *testing.T) {
	router, content := newTestRouter(t)
	ctx := context.Background()

	quoteID, err := content.CreateQuote(ctx, "q", "a")
	require.NoError(t, err)

	path := "/quotes/" + strconv.FormatInt(quoteID, 10) + "/comments"
	w := postForm(router, path, url.Values{"text": {"anon"}}, &http.Cookie{Name: identityCookie, Value: "not-a-number"})
	assert.Equal(t, http.StatusFound, w.Code)

	_, comments, err := content.GetQuoteWithComments(ctx, quoteID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Nil(t, comments[0].UserID, "unparsable cookie is anonymous, not an error")
}

func TestPostQuoteRedirectsToBottom(t *testing.T) {
	router, content := newTestRouter(t)

	w := postForm(router, "/quotes", url.Values{"text": {"Be yourself"}, "attribution": {"Oscar Wilde"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/#bottom", w.Header().Get("Location"))

	quotes, err := content.ListQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Be yourself", quotes[0].Text)
}

func TestLandingPageErrorResolution(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/?error=invalid_password", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid password. Please try again.")

	// unrecognized codes resolve to nothing, nothing caller-supplied is echoed
	req = httptest.NewRequest(http.MethodGet, "/?error=%3Cscript%3E", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "script")
	assert.Contains(t, w.Body.String(), "error=")
}

func TestQuotePage(t *testing.T) {
	router, content := newTestRouter(t)

	quoteID, err := content.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde")
	require.NoError(t, err)

	t.Run("existing quote renders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+strconv.FormatInt(quoteID, 10), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Be yourself")
	})

	t.Run("unknown id renders not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id renders not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
