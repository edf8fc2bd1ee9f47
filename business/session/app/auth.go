package app

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// AuthPayload is the outbound authentication request. Signature is
// HMAC-SHA384 over "AUTH" || Nonce || Nonce, hex-encoded, keyed by the
// API secret.
type AuthPayload struct {
	Event       string     `json:"event"`
	APIKey      string     `json:"apiKey"`
	AuthSig     string     `json:"authSig"`
	AuthPayload string     `json:"authPayload"`
	AuthNonce   string     `json:"authNonce"`
	Calc        [][]string `json:"calc,omitempty"`
}

// BuildAuthPayload signs a fresh nonce with apiSecret per the venue's
// HMAC-SHA384 handshake.
func BuildAuthPayload(apiKey, apiSecret string) (AuthPayload, error) {
	nonce := newNonce()
	payload := "AUTH" + nonce + nonce

	mac := hmac.New(sha512.New384, []byte(apiSecret))
	if _, err := mac.Write([]byte(payload)); err != nil {
		return AuthPayload{}, fmt.Errorf("sign auth payload: %w", err)
	}
	sig := hex.EncodeToString(mac.Sum(nil))

	return AuthPayload{
		Event:       "auth",
		APIKey:      apiKey,
		AuthSig:     sig,
		AuthPayload: payload,
		AuthNonce:   nonce,
	}, nil
}

// newNonce derives a monotonically-increasing-enough nonce from wall
// clock microseconds, matching the venue's expectation of a strictly
// increasing value per connection.
func newNonce() string {
	return fmt.Sprintf("%d", time.Now().UnixMicro())
}

// clientIDDateLayout is the UTC day format a client_id is scoped to,
// per the chain coordinator's 45-bit client-id generation.
const clientIDDateLayout = "2006-01-02"

// NewClientID draws a random 45-bit positive integer and the UTC date
// string it is scoped to, following the venue's client-order-id rules.
func NewClientID() (id int64, date string, err error) {
	max := big.NewInt(1<<45 - 1)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, "", fmt.Errorf("generate client id: %w", err)
	}
	return n.Int64() + 1, time.Now().UTC().Format(clientIDDateLayout), nil
}
