// Package web serves the checkout form and drives a checkout session per browser.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/ashendes/checkout-demo/internal/checkout"
	"github.com/ashendes/checkout-demo/internal/models"
	"github.com/gin-gonic/gin"
)

// SessionCookie names the cookie carrying the checkout session id
const SessionCookie = "checkout_session"

// Handler serves the checkout pages
type Handler struct {
	store *Store
}

// NewHandler creates a checkout handler backed by store
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the checkout pages on r
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(checkoutTemplate)

	r.GET("/", h.showCheckout)
	r.POST("/order", h.createOrder)
	r.POST("/payment", h.processPayment)
}

type checkoutPage struct {
	AwaitingPayment bool
	OrderID         string
	Loading         bool
	Error           string
	Success         string
	Currencies      []models.Currency
}

// showCheckout renders the caller's session. Visitors without one get a
// fresh order form and no session is stored for them.
func (h *Handler) showCheckout(c *gin.Context) {
	snap := checkout.Snapshot{State: checkout.AwaitingOrder{}}
	if sess, ok := h.lookup(c); ok {
		snap = sess.Snapshot()
	}
	h.render(c, http.StatusOK, snap)
}

func (h *Handler) createOrder(c *gin.Context) {
	sess := h.session(c)
	_, err := sess.SubmitOrder(submitContext(c), checkout.OrderForm{
		Amount:   c.PostForm("amount"),
		Currency: c.DefaultPostForm("currency", string(models.CurrencyINR)),
	})
	h.afterSubmit(c, sess, err)
}

func (h *Handler) processPayment(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	_, err := sess.SubmitPayment(submitContext(c), checkout.PaymentForm{
		Method:     c.DefaultPostForm("paymentMethod", string(models.PaymentMethodUPI)),
		CardNumber: c.PostForm("cardNumber"),
		CardExpiry: c.PostForm("cardExpiry"),
		CardCVV:    c.PostForm("cardCvv"),
		UPIAlias:   c.PostForm("upiId"),
	})
	h.afterSubmit(c, sess, err)
}

// afterSubmit redirects back to the form once a submission has completed.
// Outcomes are shown from the session, so errors other than ErrBusy need no
// special handling here.
func (h *Handler) afterSubmit(c *gin.Context, sess *checkout.Session, err error) {
	if errors.Is(err, checkout.ErrBusy) {
		h.render(c, http.StatusConflict, sess.Snapshot())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// submitContext detaches a gateway call from the browser request. A started
// call always runs to completion and is bounded by the gateway client timeout.
func submitContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *Handler) render(c *gin.Context, status int, snap checkout.Snapshot) {
	page := checkoutPage{
		Loading:    snap.Loading,
		Error:      snap.Notice.Error(),
		Success:    snap.Notice.Success(),
		Currencies: models.Currencies,
	}
	if order, ok := snap.Order(); ok {
		page.AwaitingPayment = true
		page.OrderID = order.OrderID
	}
	c.HTML(status, "checkout", page)
}

func (h *Handler) lookup(c *gin.Context) (*checkout.Session, bool) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return h.store.Get(id)
}

// session returns the caller's session, starting one when the cookie is
// missing or refers to an unknown session.
func (h *Handler) session(c *gin.Context) *checkout.Session {
	if sess, ok := h.lookup(c); ok {
		return sess
	}
	sess := h.store.Create()
	c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
	return sess
}
