package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quoter/internal/errcode"
	"quoter/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	content service.ContentService
	logger  *logrus.Logger
}

func NewHandler(auth service.AuthService, content service.ContentService, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:    auth,
		content: content,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.landingPage)
	router.GET("/quotes/:id", h.quotePage)
	router.POST("/quotes", h.postQuote)
	router.POST("/quotes/:id/comments", h.postComment)
	router.POST("/signin", h.signIn)
	router.GET("/signout", h.signOut)
}

// The main page: all quotes, the visitor's identity, and the resolved
// message for an ?error= code carried on the redirect back here.
func (h *Handler) landingPage(c *gin.Context) {
	quotes, err := h.content.ListQuotes(c.Request.Context())
	if err != nil {
		h.fail(c, fmt.Errorf("list quotes: %w", err))
		return
	}

	ident := identityFrom(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Quotes": quotes,
		"UserID": ident.UserID,
		"Error":  errcode.Resolve(c.Query("error")),
	})
}

// The quote comments page.
func (h *Handler) quotePage(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		h.notFound(c)
		return
	}

	quote, comments, err := h.content.GetQuoteWithComments(c.Request.Context(), id)
	if err != nil {
		h.fail(c, fmt.Errorf("get quote %d: %w", id, err))
		return
	}
	if quote == nil {
		h.notFound(c)
		return
	}

	ident := identityFrom(c)
	c.HTML(http.StatusOK, "quote.html", gin.H{
		"Quote":    quote,
		"Comments": comments,
		"UserID":   ident.UserID,
	})
}

// Post a new quote.
func (h *Handler) postQuote(c *gin.Context) {
	text := c.PostForm("text")
	attribution := c.PostForm("attribution")

	if _, err := h.content.CreateQuote(c.Request.Context(), text, attribution); err != nil {
		h.fail(c, fmt.Errorf("create quote: %w", err))
		return
	}
	c.Redirect(http.StatusFound, "/#bottom")
}

// Post a new comment. Anonymous visitors may comment; the identity's user id
// (possibly nil) is what gets persisted.
func (h *Handler) postComment(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		h.notFound(c)
		return
	}

	text := c.PostForm("text")
	if _, err := h.content.CreateComment(c.Request.Context(), id, text, identityFrom(c)); err != nil {
		h.fail(c, fmt.Errorf("create comment: %w", err))
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/quotes/%d#bottom", id))
}

// Sign in (or implicitly sign up) the visitor. Failures redirect back to the
// landing page carrying only a closed error code, never message text.
// Requests missing either field are rejected outright; no row is created.
func (h *Handler) signIn(c *gin.Context) {
	username, hasUsername := c.GetPostForm("username")
	password, hasPassword := c.GetPostForm("password")
	if !hasUsername || !hasPassword {
		c.String(http.StatusBadRequest, "username and password are required")
		return
	}

	userID, err := h.auth.SignIn(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Redirect(http.StatusFound, "/?error="+errcode.InvalidPassword)
			return
		}
		h.logger.Errorf("sign in: %v", err)
		c.Redirect(http.StatusFound, "/?error="+errcode.Unknown)
		return
	}

	setIdentityCookie(c, userID)
	c.Redirect(http.StatusFound, "/")
}

// Sign out the visitor. Stateless: there is no server-side session to
// invalidate, the cookie deletion is the whole operation.
func (h *Handler) signOut(c *gin.Context) {
	clearIdentityCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Errorf("%v", err)
	c.String(http.StatusInternalServerError, "internal error")
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{})
}

func quoteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
