package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
	"masterboxer.com/kpitter-web/models"
)

const (
	CookieName = "session_token"
	issuer     = "kpitter-web"
)

var (
	ErrNoSession    = errors.New("no session cookie")
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is the authentication context of one request.
type Session struct {
	ID          string
	Credentials models.Credentials
	ExpiresAt   time.Time
}

func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.Credentials.Username
}

type Options struct {
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

// Manager owns the session lifecycle: Start on login, Load per request,
// End on logout, PurgeExpired from the cleanup job.
type Manager struct {
	store        Store
	sealer       *Sealer
	signingKey   []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("auth: session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	sealer, err := NewSealer(opts.Secret)
	if err != nil {
		return nil, err
	}

	signingKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(opts.Secret), nil, []byte("kpitter session cookie"))
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}

	return &Manager{
		store:        store,
		sealer:       sealer,
		signingKey:   signingKey,
		ttl:          opts.TTL,
		secureCookie: opts.SecureCookie,
		now:          time.Now,
	}, nil
}

// Start persists creds in a new session and sets its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, creds models.Credentials) (*Session, error) {
	if !creds.IsAuthenticated() {
		return nil, errors.New("auth: cannot start a session without credentials")
	}

	now := m.now()
	id := uuid.New().String()
	sealed, err := m.sealer.Seal(id, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("seal credentials: %w", err)
	}

	record := models.Session{
		ID:             id,
		Username:       creds.Username,
		SealedPassword: sealed,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := m.sign(record)
	if err != nil {
		m.store.Delete(ctx, id)
		return nil, err
	}
	m.setCookie(w, token, record.ExpiresAt)

	log.Printf("[Session] Started session for %s (expires %s)", creds.Username, record.ExpiresAt.Format(time.RFC3339))
	return &Session{ID: id, Credentials: creds, ExpiresAt: record.ExpiresAt}, nil
}

// Load resolves the request's cookie to a live session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Expired(m.now()) {
		m.store.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}

	password, err := m.sealer.Open(record.ID, record.SealedPassword)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:          record.ID,
		Credentials: models.Credentials{Username: record.Username, Password: password},
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

// End deletes the session and its cookie. A session already gone is not an error.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, s *Session) error {
	m.Clear(w)
	if s == nil {
		return nil
	}
	if err := m.store.Delete(ctx, s.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	log.Printf("[Session] Ended session for %s", s.Username())
	return nil
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) SetFlash(ctx context.Context, s *Session, message string) {
	if s == nil {
		return
	}
	if err := m.store.SetFlash(ctx, s.ID, message); err != nil {
		log.Printf("[Session] Could not store flash: %v", err)
	}
}

func (m *Manager) TakeFlash(ctx context.Context, s *Session) string {
	if s == nil {
		return ""
	}
	flash, err := m.store.TakeFlash(ctx, s.ID)
	if err != nil {
		log.Printf("[Session] Could not read flash: %v", err)
		return ""
	}
	return flash
}

func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) sign(record models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        record.ID,
		Subject:   record.Username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(record.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != issuer || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
