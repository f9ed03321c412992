package service

import (
	"go.uber.org/zap"
)

// subscribeMode is the only hub.mode Meta uses for the handshake.
const subscribeMode = "subscribe"

// VerifyWebhook implements the Meta webhook-subscription handshake.
// It returns the challenge to echo back and true when the mode and
// token match expectations; otherwise ("", false) and the caller must
// answer 403. Pure decision, no retries.
func VerifyWebhook(mode, token, challenge, expectedToken string, logger *zap.Logger) (string, bool) {
	match := token == expectedToken

	logger.Info("webhook verification attempt",
		zap.String("mode", mode),
		zap.Bool("token_match", match),
	)

	if mode == subscribeMode && match {
		logger.Info("webhook verified")
		return challenge, true
	}

	// Token values are not logged: lengths are enough to debug a
	// misconfigured secret without leaking it.
	logger.Error("webhook verification failed",
		zap.String("mode", mode),
		zap.Int("token_len", len(token)),
		zap.Int("expected_len", len(expectedToken)),
	)
	return "", false
}
