package services

import (
	"time"

	"fintrack/internal/core"
)

func (s *ServiceSuite) TestHashPasswordDeterministic() {
	s.Equal(HashPassword("hunter22"), HashPassword("hunter22"))
	s.NotEqual(HashPassword("hunter22"), HashPassword("hunter23"))
	// SHA-256 digest, base64: always 44 characters.
	s.Len(HashPassword("x"), 44)
}

func (s *ServiceSuite) TestAuthenticate() {
	u, err := s.auth.Authenticate(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	s.Equal(s.user.ID, u.ID)

	_, err = s.auth.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Authenticate(s.ctx, "nobody", "hunter22")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestRegister() {
	u, err := s.auth.Register(s.ctx, "carol", "carol@example.com", "secret1")
	s.Require().NoError(err)
	s.NotZero(u.ID)
	s.Equal(HashPassword("secret1"), u.PasswordHash)

	_, err = s.auth.Register(s.ctx, "carol", "other@example.com", "secret1")
	s.ErrorIs(err, ErrUserExists)

	_, err = s.auth.Register(s.ctx, "other", "carol@example.com", "secret1")
	s.ErrorIs(err, ErrUserExists)

	_, err = s.auth.Register(s.ctx, "dv", "dave@example.com", "secret1")
	s.ErrorIs(err, core.ErrInvalidUsername)

	_, err = s.auth.Register(s.ctx, "dave", "not-an-email", "secret1")
	s.ErrorIs(err, core.ErrInvalidEmail)

	_, err = s.auth.Register(s.ctx, "dave", "dave@example.com", "short")
	s.ErrorIs(err, core.ErrShortPassword)
}

func (s *ServiceSuite) TestSessionLifecycle() {
	sess, err := s.auth.StartSession(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(sess.Token, 64)
	s.True(sess.ExpiresAt.After(time.Now()))

	u, err := s.auth.SessionUser(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("alice", u.Username)

	s.Require().NoError(s.auth.EndSession(s.ctx, sess.Token))
	_, err = s.auth.SessionUser(s.ctx, sess.Token)
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestSessionTokensUnique() {
	a, err := s.auth.StartSession(s.ctx, s.user.ID)
	s.Require().NoError(err)
	b, err := s.auth.StartSession(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.NotEqual(a.Token, b.Token)
}

func (s *ServiceSuite) TestPurgeExpired() {
	expired := NewAuthService(s.repo, -time.Hour)
	_, err := expired.StartSession(s.ctx, s.user.ID)
	s.Require().NoError(err)
	live, err := s.auth.StartSession(s.ctx, s.user.ID)
	s.Require().NoError(err)

	n, err := s.auth.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.auth.SessionUser(s.ctx, live.Token)
	s.NoError(err)
}
