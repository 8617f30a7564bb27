package cache

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gorilla/securecookie"
	gorillasessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	websession "github.com/usjp/campus-panel/web/session"
)

const keyPrefix = "session:"

var errSessionNotFound = errors.New("session not found")

func init() {
	// flashes are stored as []any under a single key
	gob.Register([]any{})
}

// RedisStore keeps session values in Redis; the cookie only carries the
// signed session id. Deleting the key revokes the session.
type RedisStore struct {
	client  *redis.Client
	Codecs  []securecookie.Codec
	options *sessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

// NewRedisStore creates a store signing ids with keyPairs.
func NewRedisStore(client *redis.Client, opts sessions.Options, keyPairs ...[]byte) *RedisStore {
	return &RedisStore{
		client:  client,
		Codecs:  securecookie.CodecsFromPairs(keyPairs...),
		options: &opts,
	}
}

func (s *RedisStore) Options(opts sessions.Options) {
	s.options = &opts
}

func (s *RedisStore) Get(r *http.Request, name string) (*gorillasessions.Session, error) {
	return gorillasessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie, or an empty one when
// the cookie is missing, forged or points to an expired key.
func (s *RedisStore) New(r *http.Request, name string) (*gorillasessions.Session, error) {
	session := gorillasessions.NewSession(s, name)
	session.Options = s.options.ToGorillaOptions()
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	if err := s.load(r.Context(), session); err != nil {
		if !errors.Is(err, errSessionNotFound) {
			return session, err
		}
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *gorillasessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), keyPrefix+session.ID).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, newCookie(session, ""))
		return nil
	}

	if _, renew := session.Values[websession.RenewIDKey]; renew {
		delete(session.Values, websession.RenewIDKey)
		if session.ID != "" {
			if err := s.client.Del(r.Context(), keyPrefix+session.ID).Err(); err != nil {
				return err
			}
		}
		session.ID = ""
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=")
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, newCookie(session, encoded))
	return nil
}

func newCookie(session *gorillasessions.Session, value string) *http.Cookie {
	cookie := gorillasessions.NewCookie(session.Name(), value, session.Options)
	if session.Options.MaxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second)
	}
	return cookie
}

func (s *RedisStore) save(ctx context.Context, session *gorillasessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("failed to encode session values: %w", err)
	}
	maxAge := session.Options.MaxAge
	if maxAge == 0 {
		maxAge = s.options.MaxAge
	}
	return s.client.Set(ctx, keyPrefix+session.ID, buf.Bytes(), time.Duration(maxAge)*time.Second).Err()
}

func (s *RedisStore) load(ctx context.Context, session *gorillasessions.Session) error {
	data, err := s.client.Get(ctx, keyPrefix+session.ID).Bytes()
	if errors.Is(err, redis.Nil) {
		return errSessionNotFound
	}
	if err != nil {
		return err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values); err != nil {
		return fmt.Errorf("failed to decode session data: %w", err)
	}
	return nil
}
