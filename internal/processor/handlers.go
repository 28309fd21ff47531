package processor

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/profiler/internal/hermes"
)

// HandlePersonaRequested is the NATS handler for profiler.persona.requested.
func (p *Processor) HandlePersonaRequested(subject string, data []byte) {
	ctx := p.baseCtx

	var evt hermes.PersonaRequested
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Warn("failed to parse persona request", "subject", subject, "error", err)
		return
	}

	username := strings.TrimSpace(evt.Username)
	if username == "" {
		p.logger.Warn("persona request without username", "subject", subject)
		return
	}
	if evt.RequestID == "" {
		evt.RequestID = uuid.NewString()
	}

	if _, err := p.Run(ctx, username, RunOptions{RequestID: evt.RequestID}); err != nil {
		p.logger.Error("persona request failed",
			"username", username,
			"request_id", evt.RequestID,
			"error", err,
		)
	}
}
