package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "stowaway/pkg/errors"
	httputil "stowaway/pkg/http"
	"stowaway/pkg/identity"
)

const (
	IdempotencyHeader         = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
)

// IdempotencyState is the outcome of claiming an idempotency key.
type IdempotencyState int

const (
	// IdempotencyClaimed means the caller owns the key and must Complete or Release it.
	IdempotencyClaimed IdempotencyState = iota
	IdempotencyReplay
	IdempotencyInFlight
	IdempotencyMismatch
)

type IdempotencyStore interface {
	// Claim reserves key for a request whose body hashes to fingerprint.
	Claim(key, fingerprint string) (IdempotencyState, *CachedResponse)
	Complete(key string, response *CachedResponse)
	Release(key string)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	fingerprint string
	response    *CachedResponse
	expiresAt   time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *InMemoryIdempotencyStore) Claim(key, fingerprint string) (IdempotencyState, *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if ok && now.After(entry.expiresAt) {
		delete(s.entries, key)
		ok = false
	}

	switch {
	case !ok:
		s.entries[key] = &idempotencyEntry{fingerprint: fingerprint, expiresAt: now.Add(s.ttl)}
		return IdempotencyClaimed, nil
	case entry.fingerprint != fingerprint:
		return IdempotencyMismatch, nil
	case entry.response == nil:
		return IdempotencyInFlight, nil
	default:
		return IdempotencyReplay, entry.response
	}
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.response = response
		entry.expiresAt = s.now().Add(s.ttl)
	}
}

func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports how many keys are tracked, including in-flight ones.
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.sweep(now)
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	if rc.wroteHeader {
		return
	}
	rc.wroteHeader = true
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	if !rc.wroteHeader {
		rc.WriteHeader(http.StatusOK)
	}
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on mutating requests. Keys are scoped to the caller and
// route, and bound to the request body: reusing a key with a different body
// is rejected, as is a retry that arrives while the first attempt is running.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				_ = httputil.WriteError(w, apperrors.InvalidInput("Unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			state, cached := store.Claim(key, fingerprint(body))
			switch state {
			case IdempotencyReplay:
				replay(w, cached)
				return
			case IdempotencyInFlight:
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is still being processed"))
				return
			case IdempotencyMismatch:
				_ = httputil.WriteError(w, apperrors.Validation("Idempotency-Key was already used with a different request", nil))
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
			finished := false
			defer func() {
				if !finished {
					store.Release(key)
				}
			}()
			next.ServeHTTP(capture, r)
			finished = true

			if capture.statusCode < 200 || capture.statusCode >= 300 {
				store.Release(key)
				return
			}
			store.Complete(key, &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			})
		})
	}
}

func idempotencyKey(r *http.Request, headerName string) string {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return ""
	}

	key := r.Header.Get(headerName)
	if key == "" {
		return ""
	}

	caller := identity.FromContext(r.Context()).UserID
	return caller + "|" + r.Method + "|" + r.URL.Path + "|" + key
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
