package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sama2911arth/Travisco/internal/auth/entity"
)

type stubError struct{ message string }

func (e *stubError) Error() string { return e.message }

// stubClient plays the identity provider.
type stubClient struct {
	mu         sync.Mutex
	grant      *entity.Grant
	signInErr  error
	signOutErr error
	signIns    int
	signOuts   []string
}

func (c *stubClient) SignInWithPassword(ctx context.Context, email, password string) (*entity.Grant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signIns++
	if c.signInErr != nil {
		return nil, c.signInErr
	}
	return c.grant, nil
}

func (c *stubClient) SignOut(ctx context.Context, accessToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signOuts = append(c.signOuts, accessToken)
	return c.signOutErr
}

func grantFor(id string) *entity.Grant {
	return &entity.Grant{User: &entity.User{ID: id, Email: id + "@example.com"}, AccessToken: "tok-" + id}
}

func TestSession_InitiallySignedOut(t *testing.T) {
	s := NewSession("s1", &stubClient{}, nil)

	assert.Nil(t, s.User())
	assert.False(t, s.SignedIn())
}

func TestSession_LoginSuccess(t *testing.T) {
	client := &stubClient{grant: grantFor("u1")}
	s := NewSession("s1", client, nil)

	err := s.Login(context.Background(), "a@b.com", "pw")

	require.NoError(t, err)
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
	assert.True(t, s.SignedIn())
}

func TestSession_LoginFailureLeavesSignedOut(t *testing.T) {
	remote := &stubError{message: "invalid"}
	s := NewSession("s1", &stubClient{signInErr: remote}, nil)

	err := s.Login(context.Background(), "a@b.com", "wrong")

	assert.Same(t, remote, err)
	assert.Equal(t, "invalid", err.Error())
	assert.Nil(t, s.User())
}

func TestSession_LoginFailureKeepsPreviousUser(t *testing.T) {
	client := &stubClient{grant: grantFor("u1")}
	s := NewSession("s1", client, nil)
	require.NoError(t, s.Login(context.Background(), "a@b.com", "pw"))

	client.signInErr = &stubError{message: "invalid"}
	err := s.Login(context.Background(), "c@d.com", "bad")

	assert.Error(t, err)
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
}

func TestSession_LogoutClearsUser(t *testing.T) {
	client := &stubClient{grant: grantFor("u1")}
	s := NewSession("s1", client, nil)
	require.NoError(t, s.Login(context.Background(), "a@b.com", "pw"))

	s.Logout(context.Background())

	assert.Nil(t, s.User())
	assert.Equal(t, []string{"tok-u1"}, client.signOuts)
}

func TestSession_LogoutClearsUserWhenSignOutFails(t *testing.T) {
	client := &stubClient{grant: grantFor("u1"), signOutErr: errors.New("network down")}
	s := NewSession("s1", client, nil)
	require.NoError(t, s.Login(context.Background(), "a@b.com", "pw"))

	s.Logout(context.Background())

	assert.Nil(t, s.User())
	assert.False(t, s.SignedIn())
}

func TestSession_LogoutAlwaysEndsSignedOut(t *testing.T) {
	sequences := [][]string{
		{"logout"},
		{"login", "logout"},
		{"login", "login", "logout"},
		{"login", "logout", "logout"},
		{"logout", "login", "logout"},
	}
	for _, seq := range sequences {
		for _, failSignOut := range []bool{false, true} {
			client := &stubClient{grant: grantFor("u1")}
			if failSignOut {
				client.signOutErr = errors.New("sign-out failed")
			}
			s := NewSession("s", client, nil)
			for _, op := range seq {
				if op == "login" {
					_ = s.Login(context.Background(), "a@b.com", "pw")
				} else {
					s.Logout(context.Background())
				}
			}
			assert.Nil(t, s.User(), "%v failSignOut=%v", seq, failSignOut)
		}
	}
}

func TestSession_ConcurrentLoginsSerialized(t *testing.T) {
	client := &stubClient{grant: grantFor("u1")}
	s := NewSession("s1", client, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Login(context.Background(), "a@b.com", "pw")
			_ = s.User()
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, client.signIns)
	assert.Equal(t, "u1", s.User().ID)
}
