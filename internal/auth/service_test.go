package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/backend"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	loginCalls    int
	registerCalls int
	loginErr      error
	registerErr   error
	result        port.LoginResult
}

func (g *fakeGateway) Login(_ context.Context, email, _ string) (port.LoginResult, error) {
	g.loginCalls++
	if g.loginErr != nil {
		return port.LoginResult{}, g.loginErr
	}
	res := g.result
	res.User.Email = email
	return res, nil
}

func (g *fakeGateway) Register(context.Context, string, string, string) (string, error) {
	g.registerCalls++
	if g.registerErr != nil {
		return "", g.registerErr
	}
	return "User registered", nil
}

type fakeRefresher struct {
	sess  *session.Store
	count int
	err   error
	calls int
}

func (r *fakeRefresher) Refresh(context.Context) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.sess.SetOrderCount(r.count)
	return nil
}

type fixture struct {
	gateway *fakeGateway
	sess    *session.Store
	tokens  *auth.TokenKeeper
	orders  *fakeRefresher
	notices *notify.Recorder
	service *auth.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		gateway: &fakeGateway{result: port.LoginResult{
			User:    domain.UserInfo{ID: "u1", Name: "Ann"},
			Token:   "tok-1",
			Message: "Login successful",
		}},
		sess:    session.NewStore("en", zerolog.Nop()),
		tokens:  auth.NewTokenKeeper(0),
		notices: &notify.Recorder{},
	}
	f.orders = &fakeRefresher{sess: f.sess, count: 3}

	svc, err := auth.NewService(f.gateway, f.sess, f.tokens, f.orders, auth.WithNotifier(f.notices))
	require.NoError(t, err)
	f.service = svc
	return f
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)

	user, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok-1", f.tokens.Token())
	assert.True(t, f.sess.SignedIn())

	count, shown := f.sess.OrderBadge()
	assert.True(t, shown)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"Login successful"}, f.notices.Messages())
}

func TestSignInRefreshFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errors.New("boom")

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.True(t, f.sess.SignedIn())
	assert.Equal(t, 1, f.orders.calls)
	_, shown := f.sess.OrderBadge()
	assert.False(t, shown)
}

func TestSignInValidationSkipsGateway(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com"})

	var verr *auth.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.gateway.loginCalls)
	assert.Empty(t, f.notices.Messages())
}

func TestSignInRejected(t *testing.T) {
	f := newFixture(t)
	f.gateway.loginErr = &backend.APIError{Status: 200, Message: "Invalid credentials"}

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "nope"})
	require.Error(t, err)

	assert.False(t, f.sess.SignedIn())
	assert.Empty(t, f.tokens.Token())
	assert.Equal(t, []port.Notice{{Level: port.NoticeError, Message: "Invalid credentials"}}, f.notices.Notices())
}

func TestSignInTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.loginErr = errors.New("connection refused")

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, []string{"Login failed"}, f.notices.Messages())
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)

	err := f.service.SignUp(context.Background(), auth.SignUpRequest{Name: "Ann", Email: "ann@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.registerCalls)
	assert.Equal(t, []string{"User registered"}, f.notices.Messages())
	assert.False(t, f.sess.SignedIn(), "registration does not sign in")

	f.notices.Reset()
	f.gateway.registerErr = errors.New("timeout")
	err = f.service.SignUp(context.Background(), auth.SignUpRequest{Name: "Ann", Email: "ann@example.com", Password: "123456"})
	require.Error(t, err)
	assert.Equal(t, []string{"Registration failed"}, f.notices.Messages())
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.notices.Reset()

	f.service.SignOut()

	assert.False(t, f.sess.SignedIn())
	assert.Empty(t, f.tokens.Token())
	_, shown := f.sess.OrderBadge()
	assert.False(t, shown)
	assert.Equal(t, []string{"Logged out successfully"}, f.notices.Messages())

	f.notices.Reset()
	f.service.SignOut()
	assert.Empty(t, f.notices.Messages(), "signing out twice is silent")
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t)
	f.gateway.result.Token = signedToken(t, now.Add(-time.Minute), now.Add(time.Hour))

	_, err := f.service.SignIn(context.Background(), auth.SignInRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.False(t, f.service.CheckExpiry(now))
	assert.True(t, f.sess.SignedIn())
	f.notices.Reset()

	assert.True(t, f.service.CheckExpiry(now.Add(2*time.Hour)))
	assert.Equal(t, []string{"Your session has expired, please sign in again"}, f.notices.Messages())
	assert.False(t, f.sess.SignedIn())
	assert.Empty(t, f.tokens.Token())

	assert.False(t, f.service.CheckExpiry(now.Add(3*time.Hour)), "nothing left to expire")
}

func TestNewServiceValidation(t *testing.T) {
	_, err := auth.NewService(nil, session.NewStore("en", zerolog.Nop()), auth.NewTokenKeeper(0), nil)
	require.EqualError(t, err, "gateway is nil")
}
