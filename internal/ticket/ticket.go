// Package ticket implements QR attendance ticketing: issuing a single-use
// proof-of-registration secret and redeeming it at most once at check-in.
//
// The secret is high-entropy random and only its SHA-256 is persisted, on the
// registration's ticket_hash column. Issuer and verifier never talk to each
// other; they meet at that column. Re-issuing overwrites the hash, which
// invalidates every previously issued secret for the registration.
package ticket

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecircle/backend/internal/models"
)

// Status is the caller-visible outcome of a verification.
type Status string

const (
	// StatusOK means the secret was valid and the registration just
	// transitioned to attended.
	StatusOK Status = "ok"
	// StatusInvalid covers malformed input, never-issued secrets, and
	// secrets superseded by re-issuance. They are deliberately
	// indistinguishable so a probing caller learns nothing.
	StatusInvalid Status = "invalid"
	// StatusAlreadyCheckedIn means the secret matched but the registration
	// was already attended. No state is mutated.
	StatusAlreadyCheckedIn Status = "already_checked_in"
)

var (
	// ErrNotFound is returned by Issue when the registration does not exist.
	ErrNotFound = errors.New("registration not found")
	// ErrIssuanceFailed is returned by Issue when the hash write did not
	// commit. No secret is handed out in that case.
	ErrIssuanceFailed = errors.New("ticket issuance failed")
	// ErrUpdateFailed is returned by Verify when the check-in write failed
	// after the redemption check passed. Never reported as success.
	ErrUpdateFailed = errors.New("attendance update failed")
)

// Attendee is the registration state reachable from a ticket hash,
// joined with the subject's display fields for staff confirmation.
type Attendee struct {
	RegistrationID uuid.UUID
	Status         models.AttendanceStatus
	CheckInAt      *time.Time
	FullName       string
	Role           models.Role
}

// Store is the persistence capability the ticket service needs. All
// coordination between concurrent verifications is pushed into CheckIn's
// conditional update; the service holds no state of its own.
type Store interface {
	// SetTicketHash replaces the registration's current ticket hash in a
	// single update keyed by id. Returns false when the registration does
	// not exist.
	SetTicketHash(ctx context.Context, registrationID uuid.UUID, hash string) (bool, error)
	// FindByTicketHash returns the registration whose current hash matches,
	// or nil when none does.
	FindByTicketHash(ctx context.Context, hash string) (*Attendee, error)
	// CheckIn transitions the registration to attended, recording time,
	// staff actor and notes, conditional on it still being in the
	// registered state. Returns false when the condition did not hold,
	// i.e. a concurrent verification won the race.
	CheckIn(ctx context.Context, registrationID uuid.UUID, staffID *uuid.UUID, notes *string, at time.Time) (bool, error)
}

// IssuedTicket is the result of a successful issuance. Secret exists only
// here and in the rendered image; it is never persisted.
type IssuedTicket struct {
	Secret string
	PNG    []byte
}

// Result is the outcome of a verification.
type Result struct {
	Status         Status
	RegistrationID uuid.UUID
	AttendeeName   string
	AttendeeRole   models.Role
}

// Service issues and verifies attendance tickets.
type Service struct {
	store     Store
	imageSize int
	logger    *zap.Logger
	now       func() time.Time
	encode    func(payload string, size int) ([]byte, error)
}

// NewService creates a ticket service. imageSize is the QR PNG edge in pixels.
func NewService(store Store, imageSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if imageSize <= 0 {
		imageSize = 400
	}
	return &Service{store: store, imageSize: imageSize, logger: logger, now: time.Now, encode: encodePNG}
}

const secretBytes = 32 // 256 bits of entropy

// generateSecret draws a fresh ticket secret: 32 random bytes, base64url
// without padding (43 characters).
func generateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random source: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashSecret derives the lookup hash stored at rest. A fast fixed hash is
// the right tool here: the secret is random and high-entropy, so the threat
// is storage disclosure, not offline guessing of a weak input.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Issue mints a new secret for the registration, renders it as a QR PNG and
// persists its hash, invalidating any prior secret. The render happens before
// the write so a failed issuance leaves the previously issued secret intact;
// the secret and image are returned only after the write commits.
func (s *Service) Issue(ctx context.Context, registrationID uuid.UUID) (*IssuedTicket, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	png, err := s.encode(secret, s.imageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: render qr: %v", ErrIssuanceFailed, err)
	}

	ok, err := s.store.SetTicketHash(ctx, registrationID, hashSecret(secret))
	if err != nil {
		s.logger.Error("ticket hash write failed", zap.Error(err), zap.String("registration_id", registrationID.String()))
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	s.logger.Info("ticket issued", zap.String("registration_id", registrationID.String()))
	return &IssuedTicket{Secret: secret, PNG: png}, nil
}

// Verify redeems a presented secret. Exactly one of N concurrent calls with
// the same valid secret observes StatusOK; the rest observe
// StatusAlreadyCheckedIn.
func (s *Service) Verify(ctx context.Context, secret string, staffID *uuid.UUID, notes string) (*Result, error) {
	if !validSecretShape(secret) {
		return &Result{Status: StatusInvalid}, nil
	}

	att, err := s.store.FindByTicketHash(ctx, hashSecret(secret))
	if err != nil {
		return nil, fmt.Errorf("ticket lookup: %w", err)
	}
	if att == nil {
		return &Result{Status: StatusInvalid}, nil
	}

	// Replay must be rejected before any mutation.
	if att.Status == models.StatusAttended || att.CheckInAt != nil {
		return &Result{Status: StatusAlreadyCheckedIn}, nil
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	updated, err := s.store.CheckIn(ctx, att.RegistrationID, staffID, notesPtr, s.now())
	if err != nil {
		s.logger.Error("check-in write failed", zap.Error(err), zap.String("registration_id", att.RegistrationID.String()))
		return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if !updated {
		// Lost the redemption race to a concurrent scan.
		return &Result{Status: StatusAlreadyCheckedIn}, nil
	}

	s.logger.Info("attendee checked in",
		zap.String("registration_id", att.RegistrationID.String()),
		zap.String("attendee", att.FullName),
	)
	return &Result{
		Status:         StatusOK,
		RegistrationID: att.RegistrationID,
		AttendeeName:   att.FullName,
		AttendeeRole:   att.Role,
	}, nil
}

// validSecretShape accepts the base64url alphabet at plausible lengths.
// Anything else is rejected up front without touching the store.
func validSecretShape(secret string) bool {
	if len(secret) < 16 || len(secret) > 128 {
		return false
	}
	for _, ch := range secret {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_':
		default:
			return false
		}
	}
	return true
}
