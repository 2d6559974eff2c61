package webhooks

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/pkg/queue"
	"github.com/carecircle/backend/pkg/response"
)

// userEvent is the identity-provider payload for user.created/user.updated.
type userEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PublicMetadata struct {
			Role string `json:"role"`
		} `json:"public_metadata"`
	} `json:"data"`
}

// Handler receives identity-provider webhooks and enqueues profile sync jobs.
type Handler struct {
	verifier *Verifier
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewHandler creates a webhooks handler. verifier may be nil when no secret
// is configured; deliveries are then rejected.
func NewHandler(verifier *Verifier, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{verifier: verifier, queue: q, logger: logger}
}

// HandleUserEvent handles POST /webhooks/identity.
func (h *Handler) HandleUserEvent(c *gin.Context) {
	if h.verifier == nil {
		response.Internal(c, "webhook secret not configured")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}

	err = h.verifier.Verify(body,
		c.GetHeader("webhook-id"),
		c.GetHeader("webhook-timestamp"),
		c.GetHeader("webhook-signature"),
	)
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		response.BadRequest(c, "invalid webhook signature")
		return
	}

	var evt userEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	if evt.Type != "user.created" && evt.Type != "user.updated" {
		// Other event types are acknowledged and ignored.
		response.OK(c, gin.H{"ignored": evt.Type})
		return
	}

	if evt.Data.ID == "" || len(evt.Data.EmailAddresses) == 0 {
		response.BadRequest(c, "payload missing user id or email")
		return
	}

	role := evt.Data.PublicMetadata.Role
	if !models.ValidRole(role) {
		role = string(models.RoleParticipant)
	}
	payload := queue.ProfileSyncPayload{
		ExternalID: evt.Data.ID,
		Email:      evt.Data.EmailAddresses[0].EmailAddress,
		FullName:   strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName),
		Role:       role,
	}
	if err := h.queue.EnqueueProfileSync(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue profile sync failed", zap.Error(err), zap.String("external_id", payload.ExternalID))
		response.Internal(c, "failed to queue sync")
		return
	}

	response.OK(c, gin.H{"queued": true})
}
